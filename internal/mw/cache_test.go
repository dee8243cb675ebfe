package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheReplaysFullResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	responses := cache.New(time.Minute, time.Minute)
	calls := 0

	r := gin.New()
	r.GET("/rates", Cache(responses, time.Minute), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"perMinute": "0.17"})
	})

	get := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rates", nil))
		return w
	}

	first := get()
	require.Equal(t, http.StatusOK, first.Code)

	second := get()
	assert.Equal(t, 1, calls, "second request must be served from cache")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", second.Header().Get("Content-Type"),
		"replayed response must carry the original headers")
}

func TestFlushOnWrite(t *testing.T) {
	gin.SetMode(gin.TestMode)

	responses := cache.New(time.Minute, time.Minute)
	responses.Set("/spots", cachedResponse{status: http.StatusOK}, time.Minute)

	r := gin.New()
	r.Use(FlushOnWrite(responses))
	r.POST("/spots", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.POST("/fail", func(c *gin.Context) { c.Status(http.StatusConflict) })

	post := func(path string) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
	}

	post("/fail")
	assert.Equal(t, 1, responses.ItemCount(), "failed mutations must not flush the cache")

	post("/spots")
	assert.Zero(t, responses.ItemCount(), "successful mutations must flush the cache")
}
