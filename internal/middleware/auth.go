package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/BAHUBALISID/smj/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ClaimsKey = "claims"

	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// JWTClaims are the custom claims embedded in every access token. Tokens are
// issued outside this service; smjctl token mints operator tokens.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// ActorID is the parsed UserID. JWTAuth only admits tokens where it parses.
func (c *JWTClaims) ActorID() uuid.UUID {
	id, _ := uuid.Parse(c.UserID)
	return id
}

func knownRole(r string) bool { return r == RoleAdmin || r == RoleStaff }

// IssueToken signs claims for userID with HS256.
func IssueToken(secret, userID, role string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	now := time.Now()
	claims := JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// JWTAuth validates the Bearer token on every protected route.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			apierror.Abort(c, http.StatusUnauthorized, apierror.New(apierror.CodeUnauthorized, "authentication required"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

		if err != nil || !token.Valid {
			apierror.Abort(c, http.StatusUnauthorized, apierror.New(apierror.CodeUnauthorized, "invalid or expired token"))
			return
		}
		// documents record the actor as a uuid with its role
		if _, err := uuid.Parse(claims.UserID); err != nil || !knownRole(claims.Role) {
			apierror.Abort(c, http.StatusUnauthorized, apierror.New(apierror.CodeUnauthorized, "token does not identify a staff member"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects requests whose JWT role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || !allowed[claims.Role] {
			apierror.Abort(c, http.StatusForbidden, apierror.New(apierror.CodeForbidden, "insufficient permissions"))
			return
		}
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
func GetClaims(c *gin.Context) *JWTClaims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*JWTClaims)
	return claims
}
