package handler

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoforce/platform/internal/api/middleware"
	"github.com/cryptoforce/platform/internal/model"
	"github.com/cryptoforce/platform/internal/pkg/access"
	"github.com/cryptoforce/platform/internal/testutil"
)

func adminRouter(env *testEnv, user *model.User) *gin.Engine {
	h := NewAdminHandler(env.Users, env.Referral)
	router := gin.New()
	admin := router.Group("/admin", mockAuth(user), middleware.RequireFounder(env.Gate))
	admin.PUT("/users/:id/level", h.SetLevel)
	admin.POST("/referral-codes/normalize", h.NormalizeCodes)
	return router
}

func TestAdminHandler_SetLevel(t *testing.T) {
	env, cleanup := setupEnv(t)
	defer cleanup()

	founder := testutil.TestUser(t, env.DB, testutil.WithEmail(testFounderEmail))
	target := testutil.TestUser(t, env.DB)
	router := adminRouter(env, founder)
	path := "/admin/users/" + strconv.FormatInt(target.ID, 10) + "/level"

	w := performRequest(router, "PUT", path, map[string]int{"level": access.LevelLord})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Lord", dataMap(t, parseResponse(t, w))["level_name"])

	w = performRequest(router, "PUT", path, map[string]int{"level": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, "PUT", path, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, "PUT", "/admin/users/abc/level", map[string]int{"level": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, "PUT", "/admin/users/99999/level", map[string]int{"level": 2})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminHandler_RequiresFounder(t *testing.T) {
	env, cleanup := setupEnv(t)
	defer cleanup()

	maestro := testutil.TestUser(t, env.DB, testutil.WithEmail(testMaestroEmail), testutil.WithLevel(6))
	target := testutil.TestUser(t, env.DB)
	router := adminRouter(env, maestro)

	w := performRequest(router, "PUT", "/admin/users/"+strconv.FormatInt(target.ID, 10)+"/level", map[string]int{"level": 2})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminHandler_NormalizeCodes(t *testing.T) {
	env, cleanup := setupEnv(t)
	defer cleanup()

	founder := testutil.TestUser(t, env.DB, testutil.WithLevel(access.LevelFundador))
	legacy := testutil.TestUser(t, env.DB, testutil.WithReferralCode("crypto-force-old"))
	router := adminRouter(env, founder)

	w := performRequest(router, "POST", "/admin/referral-codes/normalize", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, parseResponse(t, w))
	assert.Equal(t, true, data["dry_run"])
	assert.Len(t, data["changes"], 1)

	w = performRequest(router, "POST", "/admin/referral-codes/normalize", map[string]bool{"dry_run": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, dataMap(t, parseResponse(t, w))["dry_run"])

	var stored model.User
	require.NoError(t, env.DB.First(&stored, legacy.ID).Error)
	assert.NotEqual(t, "crypto-force-old", stored.ReferralCode)
}
