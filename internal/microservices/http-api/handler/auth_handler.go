package handler

import (
	"log/slog"
	"net/http"
	"time"

	"schoollibrary/internal/microservices/http-api/dto"
	"schoollibrary/internal/microservices/http-api/middleware"
	"schoollibrary/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth          service.AuthService
	secureCookies bool
	logger        *slog.Logger
}

func NewAuthHandler(auth service.AuthService, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, secureCookies: secureCookies, logger: logger}
}

// RegisterRoutes mounts the auth endpoints; signInGuard runs before sign-in only.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, signInGuard ...gin.HandlerFunc) {
	rg.POST("/sign-in", append(signInGuard, h.SignIn)...)
	rg.POST("/sign-out", h.SignOut)
	rg.GET("/session", h.Session)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", h.secureCookies, true)
}

// SignIn checks credentials, sets the session cookie and returns the token
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req dto.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	session, err := h.auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.setSessionCookie(c, session.Token, int(time.Until(session.ExpiresAt).Seconds()))
	c.JSON(http.StatusOK, dto.SignInResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      session.User,
	})
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	if token := middleware.TokenFromRequest(c); token != "" {
		ctx, cancel := requestContext(c)
		defer cancel()

		if err := h.auth.SignOut(ctx, token); err != nil {
			respondError(c, h.logger, err)
			return
		}
	}

	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Signed out"})
}

// Session returns the caller's identity
func (h *AuthHandler) Session(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, identity)
}
