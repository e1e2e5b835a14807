package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yushengtzou/sensorpipe/internal/infrastructure/config"
	"github.com/yushengtzou/sensorpipe/internal/infrastructure/logging"
	"github.com/yushengtzou/sensorpipe/internal/pipeline"
	"github.com/yushengtzou/sensorpipe/internal/task"
)

type fakeState struct {
	status pipeline.Status
	err    error
}

func (f *fakeState) Status(context.Context) (pipeline.Status, error) {
	return f.status, f.err
}

type fakeCheck struct {
	err error
}

func (f fakeCheck) HealthCheck(context.Context) error { return f.err }

type fakeCommands struct {
	lines []string
	full  bool
}

func (f *fakeCommands) Push(line string) bool {
	if f.full {
		return false
	}
	f.lines = append(f.lines, line)
	return true
}

func testLogger() *logging.Logger {
	return logging.NewWithWriter(config.LoggingConfig{Level: "error", Format: "text"}, "test", io.Discard)
}

// testServer creates a Server backed by fakes.
func testServer(t *testing.T, mutate func(*Deps)) *Server {
	t.Helper()

	deps := Deps{
		Config: config.StatusConfig{
			Host: "127.0.0.1",
			Port: 0,
			Timeouts: config.StatusTimeoutConfig{
				Read:  5,
				Write: 5,
				Idle:  5,
			},
		},
		Logger: testLogger(),
		State: &fakeState{status: pipeline.Status{
			Device:        "node-001",
			Mode:          "queue",
			BlinkPeriodMS: 500,
			Tasks:         []task.Info{{Name: "sampler", Priority: 5, Status: task.StatusRunning}},
		}},
		Version: "test",
	}
	if mutate != nil {
		mutate(&deps)
	}

	srv, err := New(deps)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return srv
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// ─── Construction ──────────────────────────────────────────────────

func TestNew_RequiresDeps(t *testing.T) {
	if _, err := New(Deps{State: &fakeState{}}); err == nil {
		t.Error("New() without logger should fail")
	}
	if _, err := New(Deps{Logger: testLogger()}); err == nil {
		t.Error("New() without state provider should fail")
	}
}

// ─── Health Endpoint Tests ─────────────────────────────────────────

func TestHealth(t *testing.T) {
	router := testServer(t, nil).buildRouter()

	w := do(t, router, http.MethodGet, "/api/v1/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %v, want ok", resp.Status)
	}
	if resp.Version != "test" {
		t.Errorf("version = %v, want test", resp.Version)
	}
}

func TestHealth_Degraded(t *testing.T) {
	router := testServer(t, func(d *Deps) {
		d.Checks = map[string]HealthChecker{
			"mqtt":     fakeCheck{err: errors.New("mqtt: not connected")},
			"influxdb": fakeCheck{},
		}
	}).buildRouter()

	w := do(t, router, http.MethodGet, "/api/v1/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != "degraded" {
		t.Errorf("status = %v, want degraded", resp.Status)
	}
	if resp.Components["influxdb"] != "ok" {
		t.Errorf("influxdb = %q, want ok", resp.Components["influxdb"])
	}
	if resp.Components["mqtt"] != "mqtt: not connected" {
		t.Errorf("mqtt = %q", resp.Components["mqtt"])
	}
}

// ─── State Endpoint Tests ──────────────────────────────────────────

func TestState(t *testing.T) {
	router := testServer(t, nil).buildRouter()

	w := do(t, router, http.MethodGet, "/api/v1/state", "")
	if w.Code != http.StatusOK {
		t.Fatalf("state status = %d, want %d", w.Code, http.StatusOK)
	}

	var st pipeline.Status
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if st.Device != "node-001" || st.BlinkPeriodMS != 500 {
		t.Errorf("state = %+v", st)
	}
	if len(st.Tasks) != 1 || st.Tasks[0].Status != task.StatusRunning {
		t.Errorf("tasks = %+v", st.Tasks)
	}
}

func TestState_LockTimeout(t *testing.T) {
	router := testServer(t, func(d *Deps) {
		d.State = &fakeState{err: errors.New("shared: lock timeout")}
	}).buildRouter()

	w := do(t, router, http.MethodGet, "/api/v1/state", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("state status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}

	var resp Error
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Code != ErrCodeUnavailable {
		t.Errorf("code = %q, want %q", resp.Code, ErrCodeUnavailable)
	}
}

// ─── Control Endpoint Tests ────────────────────────────────────────

func TestControl(t *testing.T) {
	cmds := &fakeCommands{}
	router := testServer(t, func(d *Deps) { d.Commands = cmds }).buildRouter()

	tests := []struct {
		body string
		want int
	}{
		{`{"command":"+"}`, http.StatusAccepted},
		{`{"command":" - "}`, http.StatusAccepted},
		{`{"command":"faster"}`, http.StatusBadRequest},
		{`not json`, http.StatusBadRequest},
		{`{"command":"` + strings.Repeat("+", maxRequestBodySize) + `"}`, http.StatusBadRequest},
	}

	for i, tt := range tests {
		t.Run(fmt.Sprintf("case%d", i), func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/api/v1/control", tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}

	if got := strings.Join(cmds.lines, ","); got != "+,-" {
		t.Errorf("pushed = %q, want %q", got, "+,-")
	}
}

func TestControl_FullAndDisabled(t *testing.T) {
	router := testServer(t, func(d *Deps) { d.Commands = &fakeCommands{full: true} }).buildRouter()
	if w := do(t, router, http.MethodPost, "/api/v1/control", `{"command":"+"}`); w.Code != http.StatusServiceUnavailable {
		t.Errorf("full status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}

	router = testServer(t, nil).buildRouter()
	if w := do(t, router, http.MethodPost, "/api/v1/control", `{"command":"+"}`); w.Code != http.StatusNotFound {
		t.Errorf("disabled status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// ─── Metrics and System ────────────────────────────────────────────

func TestMetrics(t *testing.T) {
	router := testServer(t, func(d *Deps) {
		d.Metrics = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			io.WriteString(w, "sensorpipe_readings_total 1\n") //nolint:errcheck
		})
	}).buildRouter()

	w := do(t, router, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "sensorpipe_readings_total") {
		t.Errorf("metrics = %d %q", w.Code, w.Body.String())
	}

	router = testServer(t, nil).buildRouter()
	if w := do(t, router, http.MethodGet, "/metrics", ""); w.Code != http.StatusNotFound {
		t.Errorf("metrics without handler = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestSystem(t *testing.T) {
	router := testServer(t, nil).buildRouter()

	w := do(t, router, http.MethodGet, "/api/v1/system", "")
	var m SystemMetrics
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.Runtime.Goroutines < 1 {
		t.Errorf("goroutines = %d, want >= 1", m.Runtime.Goroutines)
	}
	if m.Version != "test" {
		t.Errorf("version = %q, want test", m.Version)
	}
}

// ─── Middleware Tests ──────────────────────────────────────────────

func TestRequestID_Generated(t *testing.T) {
	router := testServer(t, nil).buildRouter()

	w := do(t, router, http.MethodGet, "/api/v1/health", "")
	if len(w.Header().Get("X-Request-ID")) != 36 {
		t.Errorf("X-Request-ID = %q, want a UUID", w.Header().Get("X-Request-ID"))
	}
}

func TestRequestID_PreservesClient(t *testing.T) {
	router := testServer(t, nil).buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "client-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "client-123" {
		t.Errorf("X-Request-ID = %q, want %q", got, "client-123")
	}
}

func TestRecovery(t *testing.T) {
	srv := testServer(t, nil)
	h := srv.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := do(t, h, http.MethodGet, "/", "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestNotFound(t *testing.T) {
	router := testServer(t, nil).buildRouter()

	if w := do(t, router, http.MethodGet, "/api/v1/nonexistent", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// ─── Lifecycle ─────────────────────────────────────────────────────

func TestStartClose(t *testing.T) {
	srv := testServer(t, nil)

	if err := srv.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() before Start should fail")
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer srv.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + srv.Addr().String() + "/api/v1/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	if err := srv.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error: %v", err)
	}
	if err := srv.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}
