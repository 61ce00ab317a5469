package middleware

import "github.com/gin-gonic/gin"

// ResolveIdentity tags every request with an identity key: "u:<subject>"
// for a valid access token, otherwise "ip:<client address>". It never
// rejects a request.
func ResolveIdentity(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := verifier.VerifyAccessToken(token); err == nil {
				setClaims(c, claims)
				c.Next()
				return
			}
		}
		c.Set(ContextIdentity, "ip:"+c.ClientIP())
		c.Next()
	}
}
