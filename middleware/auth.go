package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/ferreyrapanozzo/dental-clinic-api/model"
	"github.com/ferreyrapanozzo/dental-clinic-api/util"
)

func extractBearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", fmt.Errorf("authentication token required")
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", fmt.Errorf("authentication token required")
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return "", fmt.Errorf("authentication token required")
	}
	return token, nil
}

func parseClaims(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return util.GetJWTSecretByte(), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func setIdentity(c *gin.Context, claims jwt.MapClaims) {
	if id, ok := claims["id"].(float64); ok {
		c.Set(UserIDKey, uint(id))
	}
	if email, ok := claims["email"].(string); ok {
		c.Set(EmailKey, email)
	}
	if role, ok := claims["role"].(string); ok {
		c.Set(RoleKey, role)
	}
}

// RequireAuth validates the Bearer JWT and stores the caller's identity in
// the context. Expired or malformed tokens abort the request with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractBearerToken(c)
		if err != nil {
			util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Authentication token required", Err: err})
			c.Abort()
			return
		}

		claims, err := parseClaims(tokenString)
		if err != nil {
			util.LogUnauthorizedAccess("", "", c.ClientIP(), c.Request.URL.Path, "invalid or expired token")
			util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Invalid or expired token", Err: err})
			c.Abort()
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuth stores the caller's identity when a valid Bearer token is
// present but never blocks the request. Used on public catalog reads.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, err := extractBearerToken(c); err == nil {
			if claims, err := parseClaims(tokenString); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

// RequireRole rejects authenticated callers whose role is not in
// allowedRoles. Must run after RequireAuth.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Unauthorized", Err: fmt.Errorf("no role in context")})
			c.Abort()
			return
		}
		if !util.Contains(role, allowedRoles) {
			email, _ := GetEmail(c)
			userID, _ := GetUserID(c)
			util.LogUnauthorizedAccess(fmt.Sprintf("%d", userID), email, c.ClientIP(), c.Request.URL.Path, "insufficient role")
			util.CallForbidden(c, util.APIErrorParams{Msg: "Forbidden", Err: fmt.Errorf("role %s not allowed", role)})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireProfessional restricts a route to professional accounts.
func RequireProfessional() gin.HandlerFunc {
	return RequireRole(model.RoleProfessional)
}

// RequireAnyRole allows both patients and professionals.
func RequireAnyRole() gin.HandlerFunc {
	return RequireRole(model.RoleUser, model.RoleProfessional)
}
