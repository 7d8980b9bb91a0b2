package middleware

import (
	"net/http"
	"os"
	"strings"

	"gescom-backend/internal/model"
	"gescom-backend/pkg/authctx"
	"gescom-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in release mode")
		}
		secret = "default_super_secret_key" // development fallback only
	}
	return []byte(secret)
}

// Permission codes checked by RequirePermission.
const (
	PermDocumentsRead     = "documents:read"
	PermDocumentsWrite    = "documents:write"
	PermPaiementsWrite    = "paiements:write"
	PermAnnulationsWrite  = "annulations:write"
	PermTresorerieRead    = "tresorerie:read"
	PermTresorerieWrite   = "tresorerie:write"
	PermConfigWrite       = "config:write"
	PermUtilisateursGerer = "utilisateurs:gerer"
	PermAuditRead         = "audit:read"
)

// rolePermissions is the static role grid. Admin gets everything, comptable
// everything financial, agent only the document workflow.
var rolePermissions = map[string]map[string]bool{
	model.RoleAdmin: permSet(
		PermDocumentsRead, PermDocumentsWrite,
		PermPaiementsWrite, PermAnnulationsWrite,
		PermTresorerieRead, PermTresorerieWrite,
		PermConfigWrite, PermUtilisateursGerer, PermAuditRead,
	),
	model.RoleComptable: permSet(
		PermDocumentsRead, PermDocumentsWrite,
		PermPaiementsWrite, PermAnnulationsWrite,
		PermTresorerieRead, PermTresorerieWrite,
		PermAuditRead,
	),
	model.RoleAgent: permSet(
		PermDocumentsRead, PermDocumentsWrite,
	),
}

func permSet(perms ...string) map[string]bool {
	set := make(map[string]bool, len(perms))
	for _, p := range perms {
		set[p] = true
	}
	return set
}

// authenticate parses the bearer token and, on success, stores the user's ID
// and role on the gin context and injects the ID into the request context for
// audit attribution. Returns the claims, or nil after aborting the request.
func authenticate(c *gin.Context) jwt.MapClaims {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return nil
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
		return nil
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
		return nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
		return nil
	}

	if sub, ok := claims["sub"].(string); ok {
		if userID, err := uuid.Parse(sub); err == nil {
			c.Set("userID", sub)
			c.Request = c.Request.WithContext(authctx.WithUserID(c.Request.Context(), userID))
		}
	}
	if role, ok := claims["role"].(string); ok {
		c.Set("userRole", role)
	}
	return claims
}

// RequireRole validates the JWT and checks the user's role against the allowed list.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := authenticate(c)
		if claims == nil {
			return
		}

		userRole, ok := claims["role"].(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Role not found in token"))
			return
		}

		for _, role := range allowedRoles {
			if userRole == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
	}
}

// RequirePermission validates the JWT and checks the role grid for every
// required permission code.
func RequirePermission(requiredPerms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := authenticate(c)
		if claims == nil {
			return
		}

		userRole, ok := claims["role"].(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Role not found in token"))
			return
		}

		perms := rolePermissions[userRole]
		for _, required := range requiredPerms {
			if !perms[required] {
				c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: missing permission '"+required+"'"))
				return
			}
		}
		c.Next()
	}
}
