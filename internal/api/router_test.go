package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoforce/platform/config"
	"github.com/cryptoforce/platform/internal/api/handler"
	"github.com/cryptoforce/platform/internal/pkg/access"
	"github.com/cryptoforce/platform/internal/pkg/identity"
	"github.com/cryptoforce/platform/internal/pkg/jwt"
	"github.com/cryptoforce/platform/internal/pkg/ws"
	"github.com/cryptoforce/platform/internal/repository"
	"github.com/cryptoforce/platform/internal/service"
	"github.com/cryptoforce/platform/internal/testutil"
)

const (
	testSecret       = "router-test-secret"
	testFounderEmail = "fundador@cryptoforce.test"
	testMaestroEmail = "maestro@cryptoforce.test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	cfg := &config.Config{
		Server:    config.ServerConfig{Mode: "test"},
		JWT:       config.JWTConfig{Secret: testSecret, ExpireHours: 1},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"https://cryptoforce.example"}, AllowedMethods: []string{"GET", "POST"}},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 0.01, Burst: 2},
	}
	gate := access.NewGate([]string{testFounderEmail}, []string{testMaestroEmail})
	verifier := identity.NewLocalVerifier(testSecret)
	hub := ws.NewHub()

	userRepo := repository.NewUserRepository(db)
	referralService := service.NewReferralService(userRepo, repository.NewReferralRepository(db), cfg)
	authService := service.NewAuthService(userRepo, referralService, gate, cfg)
	userService := service.NewUserService(userRepo, gate, nil)

	handlers := &Handlers{
		Health:    handler.NewHealthHandler(db, nil),
		Levels:    handler.NewLevelsHandler(),
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService),
		Referral:  handler.NewReferralHandler(referralService),
		Admin:     handler.NewAdminHandler(userService, referralService),
		Feedback:  handler.NewFeedbackHandler(service.NewFeedbackService(repository.NewFeedbackRepository(db), userRepo, gate, nil, hub)),
		Tribunal:  handler.NewTribunalHandler(service.NewTribunalService(repository.NewTribunalRepository(db), gate, nil, hub)),
		WebSocket: handler.NewWebSocketHandler(hub, verifier, authService, gate, cfg.CORS.AllowedOrigins),
	}

	return NewRouter(handlers, verifier, authService, gate, cfg).Setup()
}

func token(t *testing.T, uid, email string) string {
	t.Helper()
	tok, err := jwt.GenerateToken(uid, email, testSecret, 1)
	require.NoError(t, err)
	return tok
}

func do(r http.Handler, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_PublicRoutes(t *testing.T) {
	r := setupRouter(t)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/health", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/levels", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v1/nope", "").Code)
}

func TestRouter_AuthenticatedRoutesRequireToken(t *testing.T) {
	r := setupRouter(t)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/auth/session"},
		{http.MethodGet, "/api/v1/user/profile"},
		{http.MethodGet, "/api/v1/user/referrals"},
		{http.MethodPost, "/api/v1/referrals/process"},
		{http.MethodGet, "/api/v1/feedback/mine"},
		{http.MethodGet, "/api/v1/tribunal/content"},
		{http.MethodPut, "/api/v1/admin/users/1/level"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			w := do(r, p.method, p.path, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	w := do(r, http.MethodGet, "/api/v1/user/profile", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_SessionCreatesProfile(t *testing.T) {
	r := setupRouter(t)

	w := do(r, http.MethodGet, "/api/v1/auth/session", token(t, "uid-nuevo", "nuevo@example.com"))
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/v1/user/profile", token(t, "uid-nuevo", "nuevo@example.com"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RoleGuards(t *testing.T) {
	r := setupRouter(t)

	member := token(t, "uid-miembro", "miembro@example.com")
	maestro := token(t, "uid-maestro", testMaestroEmail)
	founder := token(t, "uid-fundador", testFounderEmail)

	t.Run("moderator routes", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/api/v1/feedback", member).Code)
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/feedback", maestro).Code)
		assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/api/v1/tribunal/review", member).Code)
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/tribunal/review", founder).Code)
	})

	t.Run("founder routes", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/api/v1/admin/referral-codes/normalize", maestro).Code)
		assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/v1/admin/referral-codes/normalize", founder).Code)
	})

	t.Run("mine is not an id", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/feedback/mine", member).Code)
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/tribunal/content/mine", member).Code)
	})
}

func TestRouter_ValidateIsRateLimited(t *testing.T) {
	r := setupRouter(t)

	for i := 0; i < 2; i++ {
		w := do(r, http.MethodGet, "/api/v1/referrals/validate?code=CRYPTOFORCE-NADIE", "")
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := do(r, http.MethodGet, "/api/v1/referrals/validate?code=CRYPTOFORCE-NADIE", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/feedback", nil)
	req.Header.Set("Origin", "https://cryptoforce.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://cryptoforce.example", w.Header().Get("Access-Control-Allow-Origin"))
}
