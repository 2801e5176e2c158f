package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/netconfig/netconfig/pkg/auth"
	"github.com/netconfig/netconfig/pkg/util"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents a self-service account request
type RegisterRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName"`
}

// UserResponse is the public view of an account
type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Role        auth.Role `json:"role"`
}

// LoginResponse is returned by login and register
type LoginResponse struct {
	UserResponse
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func newUserResponse(u auth.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName, Role: u.Role}
}

func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	u, err := s.registry.Authenticate(req.Username, req.Password)
	if err != nil {
		util.WithField("username", req.Username).Warnf("Login failed")
		abort(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	s.respondWithToken(c, http.StatusOK, u)
}

func (s *Server) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	u, err := s.registry.CreateUser(req.Username, req.Password, req.DisplayName, auth.RoleUser)
	if errors.Is(err, util.ErrAlreadyExists) {
		abort(c, http.StatusConflict, "Username already exists")
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	util.WithField("username", u.Username).Infof("Registered user")
	s.respondWithToken(c, http.StatusCreated, u)
}

// logout exists for clients that expect it. Tokens are stateless and stay
// valid until they expire.
func (s *Server) logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) respondWithToken(c *gin.Context, status int, u auth.User) {
	token, expiresAt, err := s.tokens.Issue(u)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(status, LoginResponse{
		UserResponse: newUserResponse(u),
		Token:        token,
		ExpiresAt:    expiresAt,
	})
}

func (s *Server) currentUser(c *gin.Context) {
	c.JSON(http.StatusOK, newUserResponse(*currentUser(c)))
}

func (s *Server) myPermissions(c *gin.Context) {
	u := currentUser(c)
	grants := s.registry.GrantsForUser(u.ID)
	if grants == nil {
		grants = []auth.Grant{}
	}
	c.JSON(http.StatusOK, gin.H{"role": u.Role, "permissions": grants})
}

func (s *Server) listUsers(c *gin.Context) {
	users := s.registry.Users()
	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, newUserResponse(u))
	}
	c.JSON(http.StatusOK, resp)
}

// SetRoleRequest changes a user's role
type SetRoleRequest struct {
	Role string `json:"role"`
}

func (s *Server) setUserRole(c *gin.Context) {
	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		abort(c, http.StatusBadRequest, "Invalid role. Must be 'admin' or 'user'")
		return
	}
	if err := s.registry.SetRole(c.Param("userId"), role); err != nil {
		fail(c, err)
		return
	}
	util.WithField("user", c.Param("userId")).Infof("Role set to %s by %s", role, currentUser(c).Username)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GrantRequest grants a user access to a device. Omitted flags default to
// read-only access.
type GrantRequest struct {
	UserID    string `json:"userId"`
	DeviceID  string `json:"deviceId"`
	CanRead   *bool  `json:"canRead"`
	CanWrite  *bool  `json:"canWrite"`
	CanDelete *bool  `json:"canDelete"`
}

func (s *Server) grantPermission(c *gin.Context) {
	var req GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.DeviceID != "" {
		if _, err := s.svc.GetDevice(c.Request.Context(), req.DeviceID); err != nil {
			fail(c, err)
			return
		}
	}
	g, err := s.registry.GrantDeviceAccess(auth.Grant{
		UserID:    req.UserID,
		DeviceID:  req.DeviceID,
		CanRead:   boolOr(req.CanRead, true),
		CanWrite:  boolOr(req.CanWrite, false),
		CanDelete: boolOr(req.CanDelete, false),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (s *Server) revokePermission(c *gin.Context) {
	if err := s.registry.RevokeDeviceAccess(c.Param("userId"), c.Param("deviceId")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) devicePermissions(c *gin.Context) {
	grants := s.registry.GrantsForDevice(c.Param("id"))
	if grants == nil {
		grants = []auth.Grant{}
	}
	c.JSON(http.StatusOK, grants)
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
