package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Claims is the JWT payload issued to staff sessions.
type Claims struct {
	jwt.RegisteredClaims
	BusinessID string   `json:"business_id"`
	Role       string   `json:"role"`
	BranchIDs  []string `json:"branch_ids,omitempty"`
}

// JWTConfig configures bearer token verification.
type JWTConfig struct {
	SigningKey []byte
	Issuer     string
}

// Middleware verifies the bearer token and places the resolved Actor into the
// request context. Requests without a valid token get 401.
func Middleware(cfg JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return cfg.SigningKey, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token issuer")
			}

			actor, err := actorFromClaims(claims)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
			}

			c.SetRequest(c.Request().WithContext(WithActor(c.Request().Context(), actor)))
			c.Set("actor", actor)
			return next(c)
		}
	}
}

func actorFromClaims(claims *Claims) (Actor, error) {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Actor{}, fmt.Errorf("parse subject: %w", err)
	}
	businessID, err := uuid.Parse(claims.BusinessID)
	if err != nil {
		return Actor{}, fmt.Errorf("parse business_id: %w", err)
	}
	role := Role(claims.Role)
	if !role.Valid() {
		return Actor{}, fmt.Errorf("unknown role %q", claims.Role)
	}

	branches := make([]uuid.UUID, 0, len(claims.BranchIDs))
	for _, raw := range claims.BranchIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return Actor{}, fmt.Errorf("parse branch id %q: %w", raw, err)
		}
		branches = append(branches, id)
	}

	return Actor{UserID: userID, BusinessID: businessID, Role: role, BranchIDs: branches}, nil
}

// SignToken issues a token for the given actor. Used by tests and the dev
// token subcommand.
func SignToken(cfg JWTConfig, actor Actor, ttl time.Duration) (string, error) {
	branches := make([]string, len(actor.BranchIDs))
	for i, id := range actor.BranchIDs {
		branches[i] = id.String()
	}
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID.String(),
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		BusinessID: actor.BusinessID.String(),
		Role:       string(actor.Role),
		BranchIDs:  branches,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.SigningKey)
}
