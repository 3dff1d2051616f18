package simhost

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danmuck/lazctl/internal/protocol/codec"
	"github.com/danmuck/lazctl/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
)

func TestRouterExposesHostState(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	h := New(WithName("router-test"))
	call(t, h, 1, "ToolSetPenWidth", codec.A("Width", codec.Float(3)))

	r := h.Router()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health status=%d", rec.Code)
	}
	var health struct {
		Status  string `json:"status"`
		Host    string `json:"host"`
		Handled uint64 `json:"handled"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "ok" || health.Host != "router-test" || health.Handled != 1 {
		t.Fatalf("unexpected health: %+v", health)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/journal", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ToolSetPenWidth") {
		t.Fatalf("journal status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tool/PenWidth", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"value":"3.0"`) {
		t.Fatalf("property status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tool/Nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing property status=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/layers", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Layer 1") {
		t.Fatalf("layers status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "lazctl_") {
		t.Fatalf("metrics status=%d", rec.Code)
	}
}
