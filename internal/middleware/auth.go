package middleware

import (
	"errors"
	"net/http"
	"strings"

	"invoicing/internal/access"
	"invoicing/internal/repository"
	"invoicing/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const scopeKey = "accessScope"

// Claims are the JWT claims issued by the identity service. Subject is the user id.
type Claims struct {
	CompanyID string `json:"company_id"`
	jwt.RegisteredClaims
}

// ParseToken validates an HS256 token and returns its claims
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// IdentityFromClaims extracts the user and company ids a token was issued for
func IdentityFromClaims(claims *Claims) (userID, companyID uuid.UUID, err error) {
	userID, err = uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.New("invalid subject claim")
	}
	companyID, err = uuid.Parse(claims.CompanyID)
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.New("invalid company_id claim")
	}
	return userID, companyID, nil
}

// RequireMembership validates the JWT and resolves the caller's membership in the token's
// company. The resulting access.Scope is available through ScopeFrom.
func RequireMembership(members repository.MembershipRepository, secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Try cookie first, fallback to Authorization header
		tokenString, cookieErr := c.Cookie("access_token")
		if cookieErr != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
				return
			}
			tokenString = parts[1]
		}

		claims, err := ParseToken(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		userID, companyID, err := IdentityFromClaims(claims)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
			return
		}

		member, err := members.Find(c.Request.Context(), companyID, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: not a member of this company"))
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to verify membership"))
			return
		}
		if !access.ValidRole(member.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: unknown role"))
			return
		}

		SetScope(c, access.Scope{UserID: userID, CompanyID: companyID, Role: member.Role})
		c.Next()
	}
}

// SetScope stores the verified caller on the request
func SetScope(c *gin.Context, scope access.Scope) {
	c.Set(scopeKey, scope)
	c.Set("userID", scope.UserID.String())
	c.Set("userRole", scope.Role)
}

// ScopeFrom returns the scope set by RequireMembership, or the zero Scope.
func ScopeFrom(c *gin.Context) access.Scope {
	if v, ok := c.Get(scopeKey); ok {
		if scope, ok := v.(access.Scope); ok {
			return scope
		}
	}
	return access.Scope{}
}
