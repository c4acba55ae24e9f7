package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cryptoforce/platform/config"
	"github.com/cryptoforce/platform/internal/api/middleware"
	"github.com/cryptoforce/platform/internal/model"
	"github.com/cryptoforce/platform/internal/pkg/access"
	"github.com/cryptoforce/platform/internal/pkg/response"
	"github.com/cryptoforce/platform/internal/repository"
	"github.com/cryptoforce/platform/internal/service"
	"github.com/cryptoforce/platform/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testSecret       = "test-secret-key"
	testFounderEmail = "fundador@cryptoforce.test"
	testMaestroEmail = "maestro@cryptoforce.test"
)

// testEnv wires the real services over an in-memory database.
type testEnv struct {
	DB   *gorm.DB
	Cfg  *config.Config
	Gate *access.Gate

	Auth     *service.AuthService
	Users    *service.UserService
	Referral *service.ReferralService
	Feedback *service.FeedbackService
	Tribunal *service.TribunalService
}

func setupEnv(t *testing.T) (*testEnv, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := &config.Config{
		JWT:      config.JWTConfig{Secret: testSecret, ExpireHours: 24},
		Site:     config.SiteConfig{URL: "https://cryptoforce.example"},
		Referral: config.ReferralConfig{CommissionPerSignup: 2.5},
	}
	gate := access.NewGate([]string{testFounderEmail}, []string{testMaestroEmail})

	userRepo := repository.NewUserRepository(db)
	referralService := service.NewReferralService(userRepo, repository.NewReferralRepository(db), cfg)

	env := &testEnv{
		DB:       db,
		Cfg:      cfg,
		Gate:     gate,
		Auth:     service.NewAuthService(userRepo, referralService, gate, cfg),
		Users:    service.NewUserService(userRepo, gate, nil),
		Referral: referralService,
		Feedback: service.NewFeedbackService(repository.NewFeedbackRepository(db), userRepo, gate, nil, nil),
		Tribunal: service.NewTribunalService(repository.NewTribunalRepository(db), gate, nil, nil),
	}

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return env, cleanup
}

// mockAuth stands in for middleware.Auth with an already loaded profile.
func mockAuth(user *model.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserKey, user)
		c.Set(middleware.UserIDKey, user.ID)
		c.Next()
	}
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func dataMap(t *testing.T, resp response.Response) map[string]interface{} {
	t.Helper()
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data is not an object: %#v", resp.Data)
	return data
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
