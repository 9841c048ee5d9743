package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cardigital/user-service/internal/api/middleware"
)

// setSessionCookie emits the jwt cookie. maxAge is in seconds; a negative
// value renders as Max-Age=0 and tells the browser to drop the cookie.
func setSessionCookie(c echo.Context, value string, maxAge int) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func clearSessionCookie(c echo.Context) {
	setSessionCookie(c, "", -1)
}
