package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = serve(r, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestJWTAuth(t *testing.T) {
	const secret = "middleware-secret"
	r := gin.New()
	r.GET("/admin", JWTAuth(secret), RequireRole(RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, GetClaims(c).UserID)
	})

	call := func(tok string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
		return serve(r, req)
	}

	user := uuid.NewString()
	admin, err := IssueToken(secret, user, RoleAdmin, time.Hour)
	require.NoError(t, err)
	w := call(admin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user, w.Body.String())

	staff, err := IssueToken(secret, uuid.NewString(), RoleStaff, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, call(staff).Code)

	expired, err := IssueToken(secret, user, RoleAdmin, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(expired).Code)

	forged, err := IssueToken("other-secret", user, RoleAdmin, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(forged).Code)

	notUUID, err := IssueToken(secret, "u-1", RoleAdmin, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(notUUID).Code)

	owner, err := IssueToken(secret, user, "owner", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(owner).Code)

	assert.Equal(t, http.StatusUnauthorized, call("").Code)
}

func TestIssueToken_EmptySecret(t *testing.T) {
	_, err := IssueToken("", "u", RoleAdmin, time.Hour)
	assert.Error(t, err)
}

func TestRequireRole_NoClaims(t *testing.T) {
	r := gin.New()
	r.GET("/", RequireRole(RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusForbidden, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)
	l := NewRateLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	r := gin.New()
	r.Use(l.Handler())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	get := func() int { return serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code }

	assert.Equal(t, http.StatusOK, get())
	assert.Equal(t, http.StatusOK, get())
	assert.Equal(t, http.StatusTooManyRequests, get())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, l.Purge())
	assert.Equal(t, http.StatusOK, get())
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://shop.example"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://shop.example")
	w := serve(r, req)
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = serve(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
