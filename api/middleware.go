package api

import (
	"net/http"

	"github.com/Domenick1991/stayescrow/internal/domain"
	"github.com/gin-gonic/gin"
)

const callerKey = "caller"

// CallerIdentity reads the authenticated caller from the X-Caller header.
// The header is the identity-oracle boundary: upstream auth fills it in, the
// engine only compares it.
func CallerIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.GetHeader("X-Caller")
		if caller == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing X-Caller header"})
			return
		}
		c.Set(callerKey, domain.Identity(caller))
		c.Next()
	}
}

func caller(c *gin.Context) domain.Identity {
	return c.MustGet(callerKey).(domain.Identity)
}
