package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonwraymond/coverforge/cover"
	"github.com/jonwraymond/coverforge/mail"
	"github.com/jonwraymond/coverforge/render"
	"github.com/jonwraymond/coverforge/resilience"
	"github.com/jonwraymond/coverforge/service"
)

const validBody = `{
	"name": "Jane Doe",
	"studentId": "18-12345-1",
	"department": "Computer Science",
	"program": "BSc",
	"labGroup": "A2",
	"courseNo": "",
	"assignmentNo": "3",
	"assignmentName": "Sorting Algorithms",
	"submissionDate": "2024-05-01",
	"teacher": "Dr. Smith"
}`

type stubSender struct {
	result mail.Result
}

func (s stubSender) Send(context.Context, *cover.Record, []byte, string) mail.Result {
	return s.result
}

func newTestServer(t *testing.T, sender mail.Sender, cfg Config) *Server {
	t.Helper()
	svc, err := service.New(service.Options{
		Sender: sender,
		Now:    func() time.Time { return time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("service.New() error = %v", err)
	}
	s, err := New(svc, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestDownloadPDF(t *testing.T) {
	s := newTestServer(t, nil, Config{})
	rec := do(t, s.Handler(), http.MethodPost, "/api/cover/download/pdf", validBody)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != "attachment; filename=Ass_3_18-12345-1.pdf" {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := rec.Header().Get("Content-Length"); got != fmt.Sprint(rec.Body.Len()) {
		t.Errorf("Content-Length = %q, body is %d bytes", got, rec.Body.Len())
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("body is not a PDF")
	}
}

func TestDownload_FilenameWithFreeText(t *testing.T) {
	s := newTestServer(t, nil, Config{})
	tests := map[string]string{
		"separator": "3; part 2",
		"quotes":    `Lab "B"`,
		"non-ascii": "Übung 4",
	}
	for name, no := range tests {
		t.Run(name, func(t *testing.T) {
			body := strings.Replace(validBody, `"assignmentNo": "3"`, fmt.Sprintf(`"assignmentNo": %q`, no), 1)
			rec := do(t, s.Handler(), http.MethodPost, "/api/cover/download/pdf", body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}

			disp, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
			if err != nil {
				t.Fatalf("Content-Disposition %q: %v", rec.Header().Get("Content-Disposition"), err)
			}
			if want := "Ass_" + no + "_18-12345-1.pdf"; disp != "attachment" || params["filename"] != want {
				t.Errorf("disposition = %q, filename = %q, want %q", disp, params["filename"], want)
			}
		})
	}
}

func TestDownloadDOCX_WithVariant(t *testing.T) {
	s := newTestServer(t, nil, Config{})
	rec := do(t, s.Handler(), http.MethodPost, "/api/cover/download/docx?variant=labelled", validBody)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.HasSuffix(got, "Ass_3_18-12345-1.docx") {
		t.Errorf("Content-Disposition = %q", got)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("body is not a zip container")
	}
}

func TestDownload_Deterministic(t *testing.T) {
	s := newTestServer(t, nil, Config{})
	a := do(t, s.Handler(), http.MethodPost, "/api/cover/download/pdf", validBody)
	b := do(t, s.Handler(), http.MethodPost, "/api/cover/download/pdf", validBody)
	if !bytes.Equal(a.Body.Bytes(), b.Body.Bytes()) {
		t.Error("repeated downloads differ")
	}
}

func TestDownload_ClientErrors(t *testing.T) {
	s := newTestServer(t, nil, Config{BodyLimit: 2048})

	tests := []struct {
		name   string
		target string
		body   string
		status int
		check  func(t *testing.T, body map[string]any)
	}{
		{
			name:   "validation",
			target: "/api/cover/download/pdf",
			body:   `{"name": "J", "studentId": "bad id!"}`,
			status: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				errs, ok := body["error"].([]any)
				if !ok || len(errs) == 0 {
					t.Fatalf("error = %v, want a list", body["error"])
				}
				if errs[0] != "department is required" {
					t.Errorf("first error = %v", errs[0])
				}
			},
		},
		{
			name:   "invalid json",
			target: "/api/cover/download/pdf",
			body:   `{"name": `,
			status: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				if body["error"] != "Invalid request body" {
					t.Errorf("error = %v", body["error"])
				}
			},
		},
		{
			name:   "unknown variant",
			target: "/api/cover/download/pdf?variant=fancy",
			body:   validBody,
			status: http.StatusBadRequest,
		},
		{
			name:   "too large",
			target: "/api/cover/download/docx",
			body:   `{"name": "` + strings.Repeat("x", 4096) + `"}`,
			status: http.StatusRequestEntityTooLarge,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s.Handler(), http.MethodPost, tt.target, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.check != nil {
				tt.check(t, decode(t, rec))
			}
		})
	}
}

func TestSendToShop_Success(t *testing.T) {
	s := newTestServer(t, stubSender{result: mail.Result{Success: true, MessageID: "<m@x>"}}, Config{})
	rec := do(t, s.Handler(), http.MethodPost, "/api/cover/send-to-shop", validBody)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["success"] != true || body["message"] != "PDF sent to print shop successfully" {
		t.Errorf("body = %v", body)
	}
	tok, _ := body["token"].(string)
	if !strings.HasPrefix(tok, "345-") {
		t.Errorf("token = %q", tok)
	}
}

func TestSendToShop_DeliveryFailure(t *testing.T) {
	s := newTestServer(t, stubSender{result: mail.Result{Error: errors.New("relay down")}}, Config{})
	rec := do(t, s.Handler(), http.MethodPost, "/api/cover/send-to-shop", validBody)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode(t, rec)
	if body["success"] != false || body["error"] != "Failed to send email" {
		t.Errorf("body = %v", body)
	}
	if msg, _ := body["message"].(string); !strings.Contains(msg, "relay down") {
		t.Errorf("message = %q", msg)
	}
	if _, ok := body["token"]; ok {
		t.Error("token returned for a failed delivery")
	}
}

type fakeService struct {
	err error
}

func (f fakeService) RenderVariant(context.Context, render.Format, string, *cover.Record) ([]byte, error) {
	return nil, f.err
}

func (f fakeService) SendToShop(context.Context, *cover.Record) (service.Delivery, error) {
	return service.Delivery{}, f.err
}

func TestErrorMapping(t *testing.T) {
	renderErr := &render.RenderError{Format: render.FormatPDF, Variant: "classic", Err: errors.New("font")}

	tests := []struct {
		name      string
		err       error
		target    string
		status    int
		wantError string
	}{
		{name: "render pdf", err: renderErr, target: "/api/cover/download/pdf", status: 500, wantError: "Failed to generate PDF"},
		{name: "render docx", err: renderErr, target: "/api/cover/download/docx", status: 500, wantError: "Failed to generate DOCX"},
		{name: "busy", err: resilience.ErrBulkheadFull, target: "/api/cover/download/pdf", status: 503, wantError: "Server busy"},
		{name: "send render failure", err: renderErr, target: "/api/cover/send-to-shop", status: 500, wantError: "Failed to send to print shop"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(fakeService{err: tt.err}, Config{})
			if err != nil {
				t.Fatal(err)
			}
			rec := do(t, s.Handler(), http.MethodPost, tt.target, validBody)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := decode(t, rec)["error"]; got != tt.wantError {
				t.Errorf("error = %v, want %q", got, tt.wantError)
			}
		})
	}
}

func TestMalformedRecordIsClientError(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", cover.ErrMalformedInput)
	s, _ := New(fakeService{err: err}, Config{})
	rec := do(t, s.Handler(), http.MethodPost, "/api/cover/download/pdf", validBody)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestProbesAndMetrics(t *testing.T) {
	s := newTestServer(t, nil, Config{})
	h := s.Handler()

	if rec := do(t, h, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("/healthz status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Errorf("/readyz status = %d", rec.Code)
	}

	_ = do(t, h, http.MethodPost, "/api/cover/download/pdf", validBody)
	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d", rec.Code)
	}
	out, _ := io.ReadAll(rec.Body)
	want := `coverforge_http_requests_total{method="POST",route="/api/cover/download/pdf",status="200"} 1`
	if !strings.Contains(string(out), want) {
		t.Errorf("/metrics missing %q\n%s", want, out)
	}
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t, nil, Config{})
	rec := do(t, s.Handler(), http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if decode(t, rec)["error"] != "Not found" {
		t.Error("unexpected not found body")
	}
}

func TestNew_DuplicateRegistry(t *testing.T) {
	s := newTestServer(t, nil, Config{})
	if _, err := New(fakeService{}, Config{Registry: s.cfg.Registry}); err == nil {
		t.Error("New() with a registry already holding the metrics should fail")
	}
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, nil, Config{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
