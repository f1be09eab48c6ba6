package daemon

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"chalktalk/internal/deps"
	"chalktalk/internal/logging"
	"chalktalk/internal/pipeline"
	"chalktalk/internal/services"
	"chalktalk/internal/testsupport"
)

type stubGenerator struct {
	t       *testing.T
	scratch string
	runErr  error
	tools   []deps.Status

	lastJob *pipeline.Job
}

func (s *stubGenerator) Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	if s.runErr != nil {
		return nil, s.runErr
	}
	job, err := pipeline.NewJob(s.scratch)
	if err != nil {
		s.t.Fatalf("NewJob: %v", err)
	}
	s.lastJob = job
	videoPath := testsupport.WriteFile(s.t, job.Dir, "lesson.mp4", "fake video bytes")
	return &pipeline.Result{Job: job, VideoPath: videoPath, Segments: 3}, nil
}

func (s *stubGenerator) CheckTools() []deps.Status {
	return s.tools
}

func availableTools() []deps.Status {
	return []deps.Status{
		{Name: "Renderer", Command: "manim", Available: true},
		{Name: "FFmpeg", Command: "ffmpeg", Available: true},
		{Name: "FFprobe", Command: "ffprobe", Available: true},
	}
}

func newTestServer(t *testing.T, mutate func(*stubGenerator), opts ...testsupport.ConfigOption) (http.Handler, *stubGenerator) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	gen := &stubGenerator{t: t, scratch: cfg.Paths.ScratchDir, tools: availableTools()}
	if mutate != nil {
		mutate(gen)
	}
	d, err := New(cfg, gen, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d.api.handler(), gen
}

func postVideo(handler http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/videos", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateVideoStreamsArtifactAndCleansUp(t *testing.T) {
	handler, gen := newTestServer(t, nil)

	rec := postVideo(handler, `{"problem":"Explain recursion."}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "video/mp4" {
		t.Fatalf("content type = %q", got)
	}
	if got := rec.Header().Get("Content-Length"); got != "16" {
		t.Fatalf("content length = %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "inline") {
		t.Fatalf("content disposition = %q", got)
	}
	if rec.Body.String() != "fake video bytes" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
	if _, err := os.Stat(gen.lastJob.Dir); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("job dir not cleaned after streaming")
	}
}

// brokenWriter accepts headers but fails every body write, like a client
// that hung up mid-stream.
type brokenWriter struct {
	header http.Header
	status int
}

func (w *brokenWriter) Header() http.Header {
	if w.header == nil {
		w.header = make(http.Header)
	}
	return w.header
}

func (w *brokenWriter) WriteHeader(status int) { w.status = status }

func (w *brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset by peer")
}

func TestCreateVideoCleansUpWhenStreamBreaks(t *testing.T) {
	handler, gen := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/videos", strings.NewReader(`{"problem":"Explain recursion."}`))
	req.Header.Set("Content-Type", "application/json")
	w := &brokenWriter{}
	handler.ServeHTTP(w, req)

	if w.status != http.StatusOK {
		t.Fatalf("status = %d", w.status)
	}
	if _, err := os.Stat(gen.lastJob.Dir); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("job dir not cleaned after interrupted stream")
	}
}

func TestCreateVideoValidation(t *testing.T) {
	handler, _ := newTestServer(t, nil)

	rec := postVideo(handler, `{"problem":"  "}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty problem status = %d", rec.Code)
	}

	rec = postVideo(handler, `{not json`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json status = %d", rec.Code)
	}
}

func TestCreateVideoMissingTools(t *testing.T) {
	handler, _ := newTestServer(t, func(gen *stubGenerator) {
		gen.tools = []deps.Status{
			{Name: "Renderer", Command: "manim", Available: false, InstallHint: "pip install manim"},
			{Name: "FFmpeg", Command: "ffmpeg", Available: true},
		}
	})

	rec := postVideo(handler, `{"problem":"Explain limits."}`, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "manim") || !strings.Contains(body, "pip install manim") {
		t.Fatalf("missing tool hint absent: %s", body)
	}
}

func TestCreateVideoPipelineErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", services.Wrap(services.ErrValidation, "pipeline", "validate request", "bad input", nil), http.StatusBadRequest},
		{"configuration", services.Wrap(services.ErrConfiguration, "plan", "generate", "planner api key required", nil), http.StatusServiceUnavailable},
		{"upstream", services.Wrap(services.ErrUpstream, "plan", "generate", "model returned garbage", nil), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler, _ := newTestServer(t, func(gen *stubGenerator) {
				gen.runErr = tc.err
			})
			rec := postVideo(handler, `{"problem":"Explain limits."}`, nil)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
			if got := rec.Header().Get("Content-Type"); got != "application/json" {
				t.Fatalf("content type = %q", got)
			}
		})
	}
}

func TestBearerAuth(t *testing.T) {
	handler, _ := newTestServer(t, nil, testsupport.WithAPIToken("secret"))

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated status = %d", rec.Code)
	}
}

func TestAuthDisabledBypassesToken(t *testing.T) {
	handler, _ := newTestServer(t, nil,
		testsupport.WithAPIToken("secret"), testsupport.WithAuthDisabled())

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHealthNeedsNoAuth(t *testing.T) {
	handler, _ := newTestServer(t, nil, testsupport.WithAPIToken("secret"))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
