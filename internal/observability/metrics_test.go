package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danmuck/lazctl/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog/log"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	before := testutil.ToFloat64(commandsTotal.WithLabelValues("query", "ToolGetPenWidth", OutcomeOK))
	RecordCommand("query", "ToolGetPenWidth", OutcomeOK)
	RecordQueryDuration("ToolGetPenWidth", OutcomeOK, 3*time.Millisecond)
	after := testutil.ToFloat64(commandsTotal.WithLabelValues("query", "ToolGetPenWidth", OutcomeOK))
	if after != before+1 {
		t.Fatalf("expected counter increment, before=%v after=%v", before, after)
	}

	RecordStaleReply("message_id")
	if got := testutil.ToFloat64(staleReplies.WithLabelValues("message_id")); got < 1 {
		t.Fatalf("stale reply counter not recorded: %v", got)
	}
	RecordResync("sync", true)
	RecordHostCommand("ChooseTool", OutcomeOK)
}

func TestSetChannelStateIsExclusive(t *testing.T) {
	testlog.Start(t)
	states := []string{"open", "degraded", "closed"}
	SetChannelState("degraded", states...)
	if testutil.ToFloat64(channelState.WithLabelValues("degraded")) != 1 {
		t.Fatalf("degraded gauge not set")
	}
	SetChannelState("open", states...)
	if testutil.ToFloat64(channelState.WithLabelValues("degraded")) != 0 ||
		testutil.ToFloat64(channelState.WithLabelValues("open")) != 1 {
		t.Fatalf("state gauges not exclusive")
	}
}

func TestRequestMiddlewareRecordsRoute(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(log.Logger), RequestMetricsMiddleware("simhost"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("simhost", "GET", "/health", "200"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues("simhost", "GET", "/health", "200"))
	if after != before+1 {
		t.Fatalf("expected http counter increment, before=%v after=%v", before, after)
	}
}
