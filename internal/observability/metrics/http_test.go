package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/billed/internal/application/dispatcher"
	"github.com/garyjia/billed/internal/domain/event"
)

func TestServerMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewServerMetrics("billed-test")

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/bills/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bills/abc", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	m.RecordBillCreated("Transports")
	m.RecordReview("accepted")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	text := string(body)
	assert.Contains(t, text, `billed_http_requests_total{method="GET",path="/bills/:id",service="billed-test",status="204"} 1`)
	assert.Contains(t, text, `path="unmatched"`)
	assert.Contains(t, text, `billed_bills_created_total{service="billed-test",type="Transports"} 1`)
	assert.Contains(t, text, `billed_bills_reviews_total{service="billed-test",status="accepted"} 1`)
}

func TestServerMetrics_Subscribe(t *testing.T) {
	m := NewServerMetrics("billed-test")
	d := dispatcher.NewDispatcher()
	m.Subscribe(d)

	ctx := context.Background()
	require.NoError(t, d.Dispatch(ctx, event.NewEvent(event.TypeBillCreated, "b1", "e@test.tld", map[string]interface{}{"type": "Hôtel et logement"})))
	require.NoError(t, d.Dispatch(ctx, event.NewEvent(event.TypeBillCreated, "b2", "e@test.tld", nil)))
	require.NoError(t, d.Dispatch(ctx, event.NewEvent(event.TypeBillRefused, "b1", "admin@test.tld", nil)))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	text := rec.Body.String()

	assert.Contains(t, text, `billed_bills_created_total{service="billed-test",type="Hôtel et logement"} 1`)
	assert.Contains(t, text, `billed_bills_created_total{service="billed-test",type="unknown"} 1`)
	assert.Contains(t, text, `billed_bills_reviews_total{service="billed-test",status="refused"} 1`)
}
