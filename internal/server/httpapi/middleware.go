package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kamensky/folio/internal/api"
)

const userIDKey = "folio.userID"

// loggingMiddleware emits one structured line per request, metadata only.
func (s *Server) loggingMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		req := c.Request()
		s.log.Info("http",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", c.Response().Status),
			zap.Duration("dur", time.Since(start)),
			zap.String("remote", c.RealIP()),
		)
		return err
	}
}

// authMiddleware extracts "Authorization: Bearer <JWT>", verifies HS256 and
// stores the subject user ID on the request context.
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tok, err := bearerToken(c.Request().Header.Get("Authorization"))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "authorization required"})
		}

		var claims jwt.RegisteredClaims
		parsed, err := jwt.ParseWithClaims(tok, &claims, func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return s.signKey, nil
		})
		if err != nil || !parsed.Valid {
			return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid token"})
		}

		v := jwt.NewValidator(jwt.WithLeeway(30 * time.Second))
		if err := v.Validate(&claims); err != nil {
			return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "token expired or not valid yet"})
		}

		id, err := uuid.FromString(claims.Subject)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "bad subject"})
		}
		c.Set(userIDKey, id)
		return next(c)
	}
}

func bearerToken(h string) (string, error) {
	h = strings.TrimSpace(h)
	if len(h) >= 7 && strings.EqualFold(h[:7], "bearer ") {
		if t := strings.TrimSpace(h[7:]); t != "" {
			return t, nil
		}
	}
	return "", errors.New("no bearer token")
}
