package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordOrderOperation(t *testing.T) {
	ok := orderOperations.WithLabelValues("create", "success")
	failed := orderOperations.WithLabelValues("create", "error")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	RecordOrderOperation("create", time.Now(), nil)
	RecordOrderOperation("create", time.Now(), errors.New("boom"))
	RecordOrderOperation("create", time.Now(), errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+2, testutil.ToFloat64(failed))
}

func TestGinMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/api/orders/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	counter := httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/orders/:id", "204")
	before := testutil.ToFloat64(counter)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/orders/12", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
