package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/netconfig/netconfig/pkg/model"
	"github.com/netconfig/netconfig/pkg/util"
)

// CreateVlanRequest represents a create VLAN request
type CreateVlanRequest struct {
	DeviceID    string `json:"deviceId"`
	VlanID      int    `json:"vlanId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateLacpGroupRequest represents a create LACP group request
type CreateLacpGroupRequest struct {
	DeviceID      string              `json:"deviceId"`
	GroupNumber   int                 `json:"groupNumber"`
	Name          string              `json:"name"`
	Mode          model.LacpMode      `json:"mode"`
	LoadBalancing model.LoadBalancing `json:"loadBalancing"`
	MinLinks      int                 `json:"minLinks"`
	MaxLinks      int                 `json:"maxLinks"`
}

func (s *Server) listVlans(c *gin.Context) {
	vlans, err := s.svc.ListVlans(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(vlans))
}

func (s *Server) createVlan(c *gin.Context) {
	var req CreateVlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, util.NewValidationError(err.Error()))
		return
	}
	v, err := s.svc.CreateVlan(c.Request.Context(), model.Vlan{
		DeviceID:    req.DeviceID,
		VlanID:      req.VlanID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (s *Server) updateVlan(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		fail(c, util.NewValidationError(err.Error()))
		return
	}
	var u model.VlanUpdate
	if err := model.DecodeStrict(body, &u); err != nil {
		fail(c, err)
		return
	}
	v, err := s.svc.UpdateVlan(c.Request.Context(), c.Param("id"), u)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) deleteVlan(c *gin.Context) {
	if err := s.svc.DeleteVlan(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listLacpGroups(c *gin.Context) {
	groups, err := s.svc.ListLacpGroups(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(groups))
}

func (s *Server) createLacpGroup(c *gin.Context) {
	var req CreateLacpGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, util.NewValidationError(err.Error()))
		return
	}
	g, err := s.svc.CreateLacpGroup(c.Request.Context(), model.LacpGroup{
		DeviceID:      req.DeviceID,
		GroupNumber:   req.GroupNumber,
		Name:          req.Name,
		Mode:          req.Mode,
		LoadBalancing: req.LoadBalancing,
		MinLinks:      req.MinLinks,
		MaxLinks:      req.MaxLinks,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (s *Server) updateLacpGroup(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		fail(c, util.NewValidationError(err.Error()))
		return
	}
	var u model.LacpGroupUpdate
	if err := model.DecodeStrict(body, &u); err != nil {
		fail(c, err)
		return
	}
	g, err := s.svc.UpdateLacpGroup(c.Request.Context(), c.Param("id"), u)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (s *Server) deleteLacpGroup(c *gin.Context) {
	if err := s.svc.DeleteLacpGroup(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
