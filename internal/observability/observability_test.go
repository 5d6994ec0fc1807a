package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

func TestNewLogger_AddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger("dev", &buf)

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	log.DebugContext(ctx, "hello", "k", "v")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, buf.String())
	}

	if rec["trace_id"] != traceID.String() {
		t.Fatalf("trace_id: got %v", rec["trace_id"])
	}
	if rec["span_id"] != spanID.String() {
		t.Fatalf("span_id: got %v", rec["span_id"])
	}
	if rec["k"] != "v" {
		t.Fatalf("missing attribute k: %v", rec)
	}
}

func TestNewLogger_ProdSkipsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger("prod", &buf)

	log.Debug("noise")

	if buf.Len() != 0 {
		t.Fatalf("debug line should be filtered in prod, got %s", buf.String())
	}
}

func TestClassifyDBErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "unique", err: &pgconn.PgError{Code: "23505"}, want: "unique_violation"},
		{name: "fk", err: &pgconn.PgError{Code: "23503"}, want: "foreign_key_violation"},
		{name: "other_pg", err: &pgconn.PgError{Code: "42P01"}, want: "pg_42P01"},
		{name: "timeout", err: context.DeadlineExceeded, want: "timeout"},
		{name: "connection", err: errors.New("connection refused"), want: "connection"},
		{name: "unknown", err: errors.New("boom"), want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyDBErr(tt.err); got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestObserveDB_CountsErrorsButNotNoRows(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	_ = p.ObserveDB("users.get_by_email", func() error { return pgx.ErrNoRows })
	_ = p.ObserveDB("users.create", func() error { return &pgconn.PgError{Code: "23505"} })

	if got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.create", "unique_violation")); got != 1 {
		t.Fatalf("unique violation count: got %v want 1", got)
	}
	if got := testutil.CollectAndCount(p.DbErrorsTotal); got != 1 {
		t.Fatalf("expected exactly one error series, got %d", got)
	}
}

func TestObserveDB_NilProm(t *testing.T) {
	var p *Prom
	called := false

	err := p.ObserveDB("noop", func() error {
		called = true
		return nil
	})

	if err != nil || !called {
		t.Fatalf("nil prom should just run fn: called=%v err=%v", called, err)
	}
	p.ObserveAuth("login", "ok")
	p.ObserveNote("create", "ok")
}

func TestGinHandleMiddleware_RecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := NewProm(prometheus.NewRegistry())

	r := gin.New()
	r.Use(p.GinHandleMiddleware())
	r.GET("/home", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/home", nil))

	if got := testutil.ToFloat64(p.RequestsTotal.WithLabelValues(http.MethodGet, "/home", "200")); got != 1 {
		t.Fatalf("requests_total: got %v want 1", got)
	}
}

func TestTracerResource_NamesServiceAndEnv(t *testing.T) {
	res := tracerResource(TracerConfig{ServiceName: "notehub", Environment: "prod"})

	for key, want := range map[attribute.Key]string{
		semconv.ServiceNameKey:           "notehub",
		semconv.DeploymentEnvironmentKey: "prod",
	} {
		got, ok := res.Set().Value(key)
		if !ok || got.AsString() != want {
			t.Fatalf("%s: got %q (present=%v) want %q", key, got.AsString(), ok, want)
		}
	}
}

func TestInitTracer_NoEndpointIsNoop(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), TracerConfig{ServiceName: "notehub"})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
