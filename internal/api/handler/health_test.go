package handler

import (
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoforce/platform/internal/testutil"
)

func TestHealthHandler_Check(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	router := gin.New()
	router.GET("/health", NewHealthHandler(db, client).Check)

	w := performRequest(router, "GET", "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, parseResponse(t, w))
	assert.Equal(t, "ok", data["database"])
	assert.Equal(t, "ok", data["redis"])

	mr.Close()

	w = performRequest(router, "GET", "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "down", dataMap(t, parseResponse(t, w))["redis"])
}

func TestHealthHandler_WithoutRedis(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	router := gin.New()
	router.GET("/health", NewHealthHandler(db, nil).Check)

	w := performRequest(router, "GET", "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, hasRedis := dataMap(t, parseResponse(t, w))["redis"]
	assert.False(t, hasRedis)
}
