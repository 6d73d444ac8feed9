package auth

import (
	"net/http"
	"strings"

	"voidspace/backend/pkg/token"

	"github.com/gin-gonic/gin"
)

// CookieName is the session cookie carrying the signed token.
const CookieName = "token"

const (
	ctxUserIDKey = "userID"
	ctxClaimsKey = "claims"
)

// Middleware requires a valid session token, from the cookie or a Bearer
// header, and sets the user identity on the context.
func Middleware(signer *token.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := extractClaims(c, signer)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxClaimsKey, claims)
		c.Next()
	}
}

// OptionalMiddleware sets the user identity if a valid token is present,
// but does not fail when it is missing or invalid. Used on the feed route,
// where tier 10 allows anonymous viewers.
func OptionalMiddleware(signer *token.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := extractClaims(c, signer); claims != nil {
			c.Set(ctxUserIDKey, claims.UserID)
			c.Set(ctxClaimsKey, claims)
		}
		c.Next()
	}
}

func extractClaims(c *gin.Context, signer *token.Signer) *token.Claims {
	tokenString := ""

	if cookie, err := c.Cookie(CookieName); err == nil && cookie != "" {
		tokenString = cookie
	} else if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}

	if tokenString == "" {
		return nil
	}

	claims, err := signer.Verify(tokenString)
	if err != nil {
		return nil
	}
	return claims
}

// CurrentUserID returns the authenticated user id set by the middleware.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// CurrentClaims returns the full session claims set by the middleware.
func CurrentClaims(c *gin.Context) (*token.Claims, bool) {
	v, ok := c.Get(ctxClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*token.Claims)
	return claims, ok
}

// SetSessionCookie attaches the session token as an HTTP-only cookie.
func SetSessionCookie(c *gin.Context, tokenString string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, tokenString, int(token.TTL.Seconds()), "/", "", false, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
}
