package middleware

import (
	"strings"

	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/utils"
	"github.com/araofarias801-dev/araoalvesdefarias036500/pkg/response"
	"github.com/gin-gonic/gin"
)

const (
	ContextClaims   = "claims"
	ContextIdentity = "identity"
)

// TokenVerifier checks an access token and returns its claims.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*utils.Claims, error)
}

// AuthRequired rejects requests without a valid bearer access token.
// Claims already resolved by ResolveIdentity are reused.
func AuthRequired(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetClaims(c) != nil {
			c.Next()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			response.Abort(c, response.NewUnauthorized("authorization header required"))
			return
		}

		claims, err := verifier.VerifyAccessToken(token)
		if err != nil {
			response.Abort(c, response.NewUnauthorized("invalid or expired token"))
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// GetClaims returns the verified claims for the request, or nil.
func GetClaims(c *gin.Context) *utils.Claims {
	if v, exists := c.Get(ContextClaims); exists {
		if claims, ok := v.(*utils.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetSubject returns the authenticated username, or "".
func GetSubject(c *gin.Context) string {
	if claims := GetClaims(c); claims != nil {
		return claims.Subject
	}
	return ""
}

// GetIdentity returns the rate limit identity key resolved for the request.
func GetIdentity(c *gin.Context) string {
	return c.GetString(ContextIdentity)
}

func setClaims(c *gin.Context, claims *utils.Claims) {
	c.Set(ContextClaims, claims)
	c.Set(ContextIdentity, "u:"+claims.Subject)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
