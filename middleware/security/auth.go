package security

import (
	"net/http"
	"strings"

	"FitProject/tools/errs"
	sec "FitProject/tools/security"

	"github.com/gin-gonic/gin"
)

// context keys the REST handlers read
const (
	CtxUserIDKey = "authUserId" // string
)

type Options struct {
	HeaderToken               string // defaults to "x-auth-token"
	EnableAuthorizationBearer bool   // defaults to true
	JWT                       sec.Options
}

func DefaultOptions(jwt sec.Options) *Options {
	return &Options{
		HeaderToken:               "x-auth-token",
		EnableAuthorizationBearer: true,
		JWT:                       jwt,
	}
}

// Middleware verifies the bearer credential and binds the request to
// the identity inside it. Handlers must read the user id from context,
// never from the request body.
func Middleware(opts *Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(opts.HeaderToken))

		if token == "" && opts.EnableAuthorizationBearer {
			if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
				if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
					token = strings.TrimSpace(authz[len("bearer "):])
				}
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrTokenInvalid.WithDetail("no token"))
			return
		}

		userID, err := sec.Verify(opts.JWT, token, "")
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrTokenInvalid)
			return
		}

		c.Set(CtxUserIDKey, userID)
		c.Next()
	}
}

// UserID reads the verified identity set by Middleware.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}
