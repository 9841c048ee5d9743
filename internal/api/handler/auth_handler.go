package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cardigital/user-service/internal/api/metrics"
	"github.com/cardigital/user-service/internal/api/middleware"
	"github.com/cardigital/user-service/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates a user and sets the session cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Param        body  body  loginRequest  true  "Login credentials"
// @Success      204
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	metrics.LoginAttemptsTotal.WithLabelValues(metrics.LoginResult(err)).Inc()
	if err != nil {
		return err
	}

	setSessionCookie(c, session.Token, session.MaxAge)
	return c.NoContent(http.StatusNoContent)
}

// Logout clears the session cookie. It succeeds with or without a session.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if p := middleware.PrincipalFrom(c); p != nil {
		h.authService.Logout(c.Request().Context(), p)
	}
	clearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}
