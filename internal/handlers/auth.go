package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gardenbook/api/internal/middleware"
	"gardenbook/api/internal/models"
	"gardenbook/api/internal/service"
)

// genericResetMessage is returned for every reset request, known email or
// not, so responses carry no enumeration signal.
const genericResetMessage = "if the account exists, a reset link has been sent"

type userResponse struct {
	ID          string             `json:"id"`
	Username    string             `json:"username"`
	Email       string             `json:"email"`
	Role        string             `json:"role"`
	Preferences models.Preferences `json:"preferences"`
	IsVerified  bool               `json:"isVerified"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func toUserResponse(user models.User) userResponse {
	return userResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Role:        string(user.Role),
		Preferences: user.Preferences,
		IsVerified:  user.IsVerified,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid registration data"})
		default:
			h.serverError(c, err, "register failed")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": toUserResponse(user)})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		default:
			h.serverError(c, err, "login failed")
		}
		return
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	c.JSON(http.StatusOK, gin.H{
		"user":         toUserResponse(result.User),
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h HandlerSet) Refresh(c *gin.Context) {
	refreshToken := h.extractRefreshToken(c)
	if refreshToken == "" {
		h.clearAuthCookies(c)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	accessToken, err := h.auth.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrUserNotFound):
			h.clearAuthCookies(c)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		default:
			h.serverError(c, err, "refresh failed")
		}
		return
	}

	h.setAccessCookie(c, accessToken)
	c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
}

// Logout never hard-fails: whatever the state of the refresh token, the
// cookies are cleared and the caller sees success.
func (h HandlerSet) Logout(c *gin.Context) {
	if refreshToken := h.extractRefreshToken(c); refreshToken != "" {
		h.auth.Logout(c.Request.Context(), refreshToken)
	}

	h.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

type resetRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h HandlerSet) RequestPasswordReset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email required"})
		return
	}

	if err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email required"})
			return
		}
		h.serverError(c, err, "reset request failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": genericResetMessage})
}

type setNewPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h HandlerSet) SetNewPassword(c *gin.Context) {
	var req setNewPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token and password required"})
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "token and password required"})
		default:
			h.serverError(c, err, "password reset failed")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// Session lets clients bootstrap without risking a 401: anonymous callers
// get {authenticated: false} instead of an error.
func (h HandlerSet) Session(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          toUserResponse(user),
	})
}

func (h HandlerSet) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

func (h HandlerSet) extractRefreshToken(c *gin.Context) string {
	if token, err := c.Cookie(middleware.RefreshTokenCookie); err == nil && token != "" {
		return token
	}

	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err == nil {
		return req.RefreshToken
	}
	return ""
}

func (h HandlerSet) setAuthCookies(c *gin.Context, accessToken string, refreshToken string) {
	h.setAccessCookie(c, accessToken)
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.RefreshTokenCookie, refreshToken,
		int(h.cfg.Security.JWTRefreshTTL.Seconds()), "/", "", h.secureCookies(), true)
}

func (h HandlerSet) setAccessCookie(c *gin.Context, accessToken string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AccessTokenCookie, accessToken,
		int(h.cfg.Security.JWTAccessTTL.Seconds()), "/", "", h.secureCookies(), true)
}

func (h HandlerSet) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", h.secureCookies(), true)
	c.SetCookie(middleware.RefreshTokenCookie, "", -1, "/", "", h.secureCookies(), true)
}

func (h HandlerSet) secureCookies() bool {
	return h.cfg.Environment == "production"
}

// serverError hides internal failures behind a generic message; detail goes
// to the log only.
func (h HandlerSet) serverError(c *gin.Context, err error, msg string) {
	h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
