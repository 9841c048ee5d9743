package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cardigital/user-service/internal/api/metrics"
	"github.com/cardigital/user-service/internal/core/domain"
	"github.com/cardigital/user-service/internal/core/ports"
)

const (
	// SessionCookie is the cookie carrying the session token.
	SessionCookie = "jwt"
	// PrincipalKey is the echo context key holding the *domain.Principal.
	PrincipalKey = "principal"
)

// Authenticate resolves the session token, when the request carries one, and
// attaches the principal to the echo context and the request context.
// Requests without a token pass through anonymously; route guards decide
// whether that is acceptable. On the route paths listed in lenient any failed
// authentication, including a store outage, passes through anonymously.
func Authenticate(auth ports.Authenticator, log zerolog.Logger, lenient ...string) echo.MiddlewareFunc {
	skipReject := make(map[string]struct{}, len(lenient))
	for _, p := range lenient {
		skipReject[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := tokenFrom(c.Request())
			if token == "" {
				metrics.AuthenticationsTotal.WithLabelValues("anonymous").Inc()
				return next(c)
			}

			principal, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				metrics.AuthenticationsTotal.WithLabelValues("rejected").Inc()
				rejected := errors.Is(err, domain.ErrUnauthenticated)
				if rejected {
					log.Debug().Err(err).Str("path", c.Path()).Msg("rejected session token")
				} else {
					log.Error().Err(err).Str("path", c.Path()).Msg("authentication lookup failed")
				}
				if _, ok := skipReject[c.Path()]; ok {
					return next(c)
				}
				if !rejected {
					return err
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
			}

			metrics.AuthenticationsTotal.WithLabelValues("authenticated").Inc()
			c.Set(PrincipalKey, principal)
			c.SetRequest(c.Request().WithContext(domain.WithPrincipal(c.Request().Context(), principal)))
			return next(c)
		}
	}
}

// tokenFrom reads the session cookie, falling back to a bearer header.
func tokenFrom(r *http.Request) string {
	if ck, err := r.Cookie(SessionCookie); err == nil && ck.Value != "" {
		return ck.Value
	}

	parts := strings.SplitN(r.Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// PrincipalFrom returns the principal attached by Authenticate, or nil.
func PrincipalFrom(c echo.Context) *domain.Principal {
	p, _ := c.Get(PrincipalKey).(*domain.Principal)
	return p
}
