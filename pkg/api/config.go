package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/netconfig/netconfig/pkg/netconfig"
	"github.com/netconfig/netconfig/pkg/util"
)

// maxConfigBytes caps import and diff request bodies
const maxConfigBytes = 4 << 20

// ImportRequest carries configuration text to import
type ImportRequest struct {
	ConfigText string `json:"configText"`
}

// DiffRequest carries the running configuration to compare against. Either
// field may be used.
type DiffRequest struct {
	Running    string `json:"running"`
	ConfigText string `json:"configText"`
}

func (s *Server) generateConfig(c *gin.Context) {
	cfg, err := s.svc.GenerateConfig(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"config": cfg})
}

func (s *Server) importConfig(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxConfigBytes)
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, util.NewValidationError(err.Error()))
		return
	}

	// the service checks permission and device existence before the text
	result, err := s.svc.ImportConfig(c.Request.Context(), c.Param("id"), req.ConfigText)
	if req.ConfigText == "" && errors.Is(err, util.ErrValidationFailed) {
		abort(c, http.StatusBadRequest, "Configuration text is required")
		return
	}
	var importErr *netconfig.ImportError
	if errors.As(err, &importErr) {
		util.WithField("device", c.Param("id")).Errorf("Import stopped after %d vlans: %v", len(importErr.Committed), importErr.Err)
		abort(c, http.StatusInternalServerError, "Failed to import configuration")
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Configuration imported successfully",
		"vlans":   len(result.Vlans),
	})
}

func (s *Server) diffConfig(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxConfigBytes)
	var req DiffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, util.NewValidationError(err.Error()))
		return
	}
	running := req.Running
	if running == "" {
		running = req.ConfigText
	}
	diff, err := s.svc.DiffConfig(c.Request.Context(), c.Param("id"), running)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"diff": diff, "inSync": diff == ""})
}
