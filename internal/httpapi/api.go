// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package httpapi exposes registration, login, logout, profile and role
// lookups over HTTP with a cookie-carried session.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/account"
	"github.com/holomush/accounts/internal/auth"
	"github.com/holomush/accounts/internal/credential"
)

// Gate is the authentication surface the API drives.
type Gate interface {
	Login(ctx context.Context, sc auth.SessionContext, login, password string) auth.Result
	Logout(ctx context.Context, sc auth.SessionContext) error
	Register(ctx context.Context, login, password string) (ulid.ULID, error)
}

// Accounts is the account lookup surface the API drives.
type Accounts interface {
	LoginExists(ctx context.Context, login string) (bool, error)
	Role(ctx context.Context, name string) (*account.Role, error)
	Profile(ctx context.Context, userID ulid.ULID) (*account.Profile, error)
	UpdateProfile(ctx context.Context, userID ulid.ULID, update account.ProfileUpdate) (*account.Profile, error)
}

// Resolver turns a presented session token back into its principal.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*auth.Principal, error)
}

// RequestRecorder counts served requests.
type RequestRecorder interface {
	HTTPRequest(route string, status int)
}

// Deps holds the Handler's collaborators.
type Deps struct {
	Gate     Gate
	Accounts Accounts
	Sessions Resolver
	Cookie   CookieConfig
	Requests RequestRecorder // optional
	Logger   *slog.Logger    // optional
}

// Handler wires HTTP routes to the account services.
type Handler struct {
	gate     Gate
	accounts Accounts
	sessions Resolver
	cookie   CookieConfig
	requests RequestRecorder
	logger   *slog.Logger
}

type nopRequests struct{}

func (nopRequests) HTTPRequest(string, int) {}

// NewHandler creates a Handler.
func NewHandler(deps Deps) (*Handler, error) {
	switch {
	case deps.Gate == nil:
		return nil, oops.Code("HTTPAPI_INVALID_HANDLER").Errorf("gate is required")
	case deps.Accounts == nil:
		return nil, oops.Code("HTTPAPI_INVALID_HANDLER").Errorf("account service is required")
	case deps.Sessions == nil:
		return nil, oops.Code("HTTPAPI_INVALID_HANDLER").Errorf("session resolver is required")
	case deps.Cookie.Name == "":
		return nil, oops.Code("HTTPAPI_INVALID_HANDLER").Errorf("cookie name is required")
	}
	h := &Handler{
		gate:     deps.Gate,
		accounts: deps.Accounts,
		sessions: deps.Sessions,
		cookie:   deps.Cookie,
		requests: deps.Requests,
		logger:   deps.Logger,
	}
	if h.requests == nil {
		h.requests = nopRequests{}
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h, nil
}

// Router returns a gin engine serving every route.
func (h *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.observe(), h.resolveSession())
	h.registerRoutes(router)
	return router
}

func (h *Handler) registerRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		acct := api.Group("/account")
		acct.POST("/register", h.register)
		acct.POST("/login", h.login)
		acct.POST("/logout", h.logout)
		acct.GET("/exists", h.exists)
		acct.GET("/me", h.me)
		acct.GET("/profile", h.getProfile)
		acct.PUT("/profile", h.updateProfile)

		api.GET("/roles/:name", h.getRole)
	}
}

type registerRequest struct {
	Login           string `json:"login" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type profileRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	MiddleName string `json:"middle_name"`
	Gender     string `json:"gender"`
}

// PrincipalResponse is the JSON form of an authenticated principal.
type PrincipalResponse struct {
	UserID string `json:"user_id"`
	Login  string `json:"login"`
	Role   string `json:"role,omitempty"`
}

// ProfileResponse is the JSON form of a profile.
type ProfileResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	MiddleName string `json:"middle_name"`
	Gender     string `json:"gender"`
}

// RoleResponse is the JSON form of a role.
type RoleResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func principalToResponse(p auth.Principal) PrincipalResponse {
	return PrincipalResponse{UserID: p.UserID.String(), Login: p.Login, Role: p.Role}
}

func profileToResponse(p *account.Profile) ProfileResponse {
	return ProfileResponse{
		ID:         p.ID.String(),
		UserID:     p.UserID.String(),
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		MiddleName: p.MiddleName,
		Gender:     p.Gender,
	}
}

func errorJSON(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "login, password and confirm_password are required")
		return
	}
	if !auth.PasswordsMatch(req.Password, req.ConfirmPassword) {
		errorJSON(c, http.StatusBadRequest, "passwords do not match")
		return
	}

	userID, err := h.gate.Register(c.Request.Context(), req.Login, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"user_id": userID.String()})
	case errors.Is(err, account.ErrLoginTaken):
		errorJSON(c, http.StatusConflict, "login is already taken")
	case errors.Is(err, account.ErrInvalid), errors.Is(err, credential.ErrInvalidArgument):
		errorJSON(c, http.StatusBadRequest, validationMessage(err))
	default:
		errorJSON(c, http.StatusInternalServerError, "registration failed")
	}
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusUnauthorized, auth.RejectedMessage)
		return
	}

	result := h.gate.Login(c.Request.Context(), h.sessionFrom(c), req.Login, req.Password)
	if !result.Authenticated() {
		errorJSON(c, http.StatusUnauthorized, result.Message())
		return
	}
	c.JSON(http.StatusOK, principalToResponse(*result.Principal))
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.gate.Logout(c.Request.Context(), h.sessionFrom(c)); err != nil {
		errorJSON(c, http.StatusInternalServerError, "logout failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) exists(c *gin.Context) {
	login := strings.TrimSpace(c.Query("login"))
	if login == "" {
		errorJSON(c, http.StatusBadRequest, "login query parameter is required")
		return
	}
	exists, err := h.accounts.LoginExists(c.Request.Context(), login)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "lookup failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

// principal aborts with 401 when the caller is anonymous.
func (h *Handler) principal(c *gin.Context) (*auth.Principal, bool) {
	sc := h.sessionFrom(c)
	if sc.Principal() == nil {
		errorJSON(c, http.StatusUnauthorized, "not signed in")
		return nil, false
	}
	return sc.Principal(), true
}

func (h *Handler) me(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, principalToResponse(*p))
}

func (h *Handler) getProfile(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	profile, err := h.accounts.Profile(c.Request.Context(), p.UserID)
	if err != nil {
		h.lookupError(c, err, "profile not found")
		return
	}
	c.JSON(http.StatusOK, profileToResponse(profile))
}

func (h *Handler) updateProfile(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid profile body")
		return
	}

	profile, err := h.accounts.UpdateProfile(c.Request.Context(), p.UserID, account.ProfileUpdate{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		MiddleName: req.MiddleName,
		Gender:     req.Gender,
	})
	if err != nil {
		if errors.Is(err, account.ErrInvalid) {
			errorJSON(c, http.StatusBadRequest, validationMessage(err))
			return
		}
		h.lookupError(c, err, "profile not found")
		return
	}
	c.JSON(http.StatusOK, profileToResponse(profile))
}

func (h *Handler) getRole(c *gin.Context) {
	role, err := h.accounts.Role(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.lookupError(c, err, "role not found")
		return
	}
	c.JSON(http.StatusOK, RoleResponse{ID: role.ID.String(), Name: role.Name, Description: role.Description})
}

func (h *Handler) lookupError(c *gin.Context, err error, notFound string) {
	if errors.Is(err, account.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, notFound)
		return
	}
	errorJSON(c, http.StatusInternalServerError, "lookup failed")
}

// validationMessage drops the trailing sentinel text from a validation error.
func validationMessage(err error) string {
	return strings.TrimSuffix(err.Error(), ": "+account.ErrInvalid.Error())
}
