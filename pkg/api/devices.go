package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/netconfig/netconfig/pkg/model"
	"github.com/netconfig/netconfig/pkg/util"
)

// CreateDeviceRequest represents a create device request
type CreateDeviceRequest struct {
	Hostname  string             `json:"hostname"`
	IPAddress string             `json:"ipAddress"`
	Vendor    model.Vendor       `json:"vendor"`
	Model     string             `json:"model"`
	Status    model.DeviceStatus `json:"status"`
}

// BulkUpdateRequest applies one interface update to several interfaces
type BulkUpdateRequest struct {
	IDs     []string                   `json:"ids"`
	Updates map[string]json.RawMessage `json:"updates"`
}

func (s *Server) stats(c *gin.Context) {
	st, err := s.svc.Stats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) listDevices(c *gin.Context) {
	devices, err := s.svc.ListDevices(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(devices))
}

func (s *Server) getDevice(c *gin.Context) {
	d, err := s.svc.GetDevice(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) deviceHealth(c *gin.Context) {
	report, err := s.svc.CheckHealth(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) createDevice(c *gin.Context) {
	if !currentUser(c).IsAdmin() {
		abort(c, http.StatusForbidden, "Only administrators can create devices")
		return
	}
	var req CreateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, util.NewValidationError(err.Error()))
		return
	}
	d, err := s.svc.CreateDevice(c.Request.Context(), model.Device{
		Hostname:  req.Hostname,
		IPAddress: req.IPAddress,
		Vendor:    req.Vendor,
		Model:     req.Model,
		Status:    req.Status,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (s *Server) updateDevice(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		fail(c, util.NewValidationError(err.Error()))
		return
	}
	var u model.DeviceUpdate
	if err := model.DecodeStrict(body, &u); err != nil {
		fail(c, err)
		return
	}
	d, err := s.svc.UpdateDevice(c.Request.Context(), c.Param("id"), u)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) deleteDevice(c *gin.Context) {
	if err := s.svc.DeleteDevice(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listInterfaces(c *gin.Context) {
	ifaces, err := s.svc.ListInterfaces(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(ifaces))
}

func (s *Server) getInterface(c *gin.Context) {
	i, err := s.svc.GetInterface(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, i)
}

func (s *Server) updateInterface(c *gin.Context) {
	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		fail(c, util.NewValidationError(err.Error()))
		return
	}
	u, err := model.DecodeInterfaceUpdate(raw)
	if err != nil {
		fail(c, err)
		return
	}
	i, err := s.svc.UpdateInterface(c.Request.Context(), c.Param("id"), u)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, i)
}

func (s *Server) bulkUpdateInterfaces(c *gin.Context) {
	var req BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, util.NewValidationError(err.Error()))
		return
	}
	u, err := model.DecodeInterfaceUpdate(req.Updates)
	if err != nil {
		fail(c, err)
		return
	}
	ifaces, err := s.svc.BulkUpdateInterfaces(c.Request.Context(), req.IDs, u)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(ifaces))
}

// nonNil keeps empty lists encoding as [] rather than null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
