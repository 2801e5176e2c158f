// Package api serves the netconfig service over HTTP.
//
// Every route except login and register requires a bearer token issued by
// the login handler. Errors are returned as {"error": "..."} with a status
// derived from the service error.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/netconfig/netconfig/pkg/auth"
	"github.com/netconfig/netconfig/pkg/netconfig"
)

// Server holds the dependencies of the HTTP handlers
type Server struct {
	svc      *netconfig.Service
	checker  *auth.Checker
	registry *auth.Registry
	tokens   *auth.TokenIssuer
}

// NewServer returns a server for svc. The service must have been built
// with a permission checker.
func NewServer(svc *netconfig.Service, tokens *auth.TokenIssuer) (*Server, error) {
	checker := svc.Checker()
	if checker == nil {
		return nil, errors.New("api server requires a service with a permission checker")
	}
	if tokens == nil {
		return nil, errors.New("api server requires a token issuer")
	}
	return &Server{
		svc:      svc,
		checker:  checker,
		registry: checker.Registry(),
		tokens:   tokens,
	}, nil
}

// Handler returns a gin engine with every route registered
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	s.SetupRouter(r)
	return r
}

// SetupRouter registers the API routes on r
func (s *Server) SetupRouter(r *gin.Engine) {
	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", s.login)
			authGroup.POST("/register", s.register)
			authGroup.POST("/logout", s.logout)
		}

		protected := api.Group("")
		protected.Use(s.authRequired())
		{
			protected.GET("/auth/user", s.currentUser)
			protected.GET("/me/permissions", s.myPermissions)
			protected.GET("/stats", s.stats)

			devices := protected.Group("/devices")
			{
				devices.GET("", s.listDevices)
				devices.POST("", s.createDevice)
				devices.GET("/:id", s.getDevice)
				devices.PATCH("/:id", s.updateDevice)
				devices.DELETE("/:id", s.deleteDevice)

				devices.GET("/:id/interfaces", s.listInterfaces)
				devices.GET("/:id/vlans", s.listVlans)
				devices.GET("/:id/lacp", s.listLacpGroups)

				devices.GET("/:id/config", s.generateConfig)
				devices.POST("/:id/generate-config", s.generateConfig)
				devices.POST("/:id/import-config", s.importConfig)
				devices.POST("/:id/diff-config", s.diffConfig)
				devices.GET("/:id/health", s.deviceHealth)
			}

			protected.GET("/interfaces/:id", s.getInterface)
			protected.PATCH("/interfaces/:id", s.updateInterface)
			protected.POST("/interfaces/bulk-update", s.bulkUpdateInterfaces)

			protected.POST("/vlans", s.createVlan)
			protected.PATCH("/vlans/:id", s.updateVlan)
			protected.DELETE("/vlans/:id", s.deleteVlan)

			protected.POST("/lacp", s.createLacpGroup)
			protected.PATCH("/lacp/:id", s.updateLacpGroup)
			protected.DELETE("/lacp/:id", s.deleteLacpGroup)

			admin := protected.Group("/admin")
			admin.Use(s.adminRequired())
			{
				admin.GET("/users", s.listUsers)
				admin.PATCH("/users/:userId/role", s.setUserRole)
				admin.GET("/devices/:id/permissions", s.devicePermissions)
				admin.POST("/permissions", s.grantPermission)
				admin.DELETE("/permissions/:userId/:deviceId", s.revokePermission)
			}
		}
	}
}
