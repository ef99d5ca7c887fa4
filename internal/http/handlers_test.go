package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ochronus/gotransloadit/internal/app"
	"github.com/ochronus/gotransloadit/internal/config"
	"github.com/sirupsen/logrus"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestHandler() *Handler {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Suppress log output during tests

	container := &app.Container{
		Config: config.DefaultConfig(),
		Logger: logger,
	}

	handler := NewHandler(container, NewNotificationStore(10))
	handler.now = func() time.Time {
		return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	}
	return handler
}

func setupTestRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.POST("/notify", handler.Notify)
	router.GET("/assemblies/:id", handler.GetAssembly)
	router.GET("/healthz", handler.Health)
	return router
}

func postNotify(router *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/notify", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestNewHandler(t *testing.T) {
	handler := setupTestHandler()
	if handler == nil {
		t.Fatal("expected non-nil handler")
	}
	if handler.store == nil {
		t.Error("expected non-nil store")
	}
	if handler.logger == nil {
		t.Error("expected non-nil logger")
	}
}

func TestNotifyStoresPayload(t *testing.T) {
	handler := setupTestHandler()
	router := setupTestRouter(handler)

	payload := `{"assembly_id":"a1","ok":"ASSEMBLY_COMPLETED","results":{}}`
	w := postNotify(router, url.Values{
		"transloadit": {payload},
		"signature":   {"sha384:abc"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	n, ok := handler.store.Get("a1")
	if !ok {
		t.Fatal("expected notification to be stored")
	}
	if string(n.Payload) != payload {
		t.Errorf("unexpected payload %s", n.Payload)
	}
	if n.Signature != "sha384:abc" {
		t.Errorf("unexpected signature %q", n.Signature)
	}
}

func TestNotifyMultipartForm(t *testing.T) {
	handler := setupTestHandler()
	router := setupTestRouter(handler)

	body := "--b\r\nContent-Disposition: form-data; name=\"transloadit\"\r\n\r\n" +
		`{"assembly_id":"a2","error":"INTERNAL_COMMAND_ERROR","message":"boom"}` +
		"\r\n--b--\r\n"
	req := httptest.NewRequest(http.MethodPost, "/notify", strings.NewReader(body))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=b")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	n, ok := handler.store.Get("a2")
	if !ok {
		t.Fatal("expected notification to be stored")
	}
	if n.Payload.ErrorCode() != "INTERNAL_COMMAND_ERROR" {
		t.Errorf("unexpected error code %q", n.Payload.ErrorCode())
	}
}

func TestNotifyRejectsInvalidPayloads(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{name: "missing field", form: url.Values{"signature": {"x"}}},
		{name: "invalid json", form: url.Values{"transloadit": {"{not json"}}},
		{name: "json array", form: url.Values{"transloadit": {"[1,2]"}}},
		{name: "missing assembly id", form: url.Values{"transloadit": {`{"ok":"ASSEMBLY_COMPLETED"}`}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := setupTestHandler()
			router := setupTestRouter(handler)

			w := postNotify(router, tt.form)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
			if handler.store.Len() != 0 {
				t.Error("expected nothing to be stored")
			}
		})
	}
}

func TestGetAssembly(t *testing.T) {
	handler := setupTestHandler()
	router := setupTestRouter(handler)

	postNotify(router, url.Values{"transloadit": {`{"assembly_id":"a1","ok":"ASSEMBLY_EXECUTING"}`}})
	postNotify(router, url.Values{"transloadit": {`{"assembly_id":"a1","ok":"ASSEMBLY_COMPLETED"}`}})

	req := httptest.NewRequest(http.MethodGet, "/assemblies/a1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		AssemblyID string `json:"assembly_id"`
		ReceivedAt string `json:"received_at"`
		Payload    struct {
			OK string `json:"ok"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.AssemblyID != "a1" {
		t.Errorf("unexpected assembly id %q", resp.AssemblyID)
	}
	if resp.Payload.OK != "ASSEMBLY_COMPLETED" {
		t.Errorf("expected latest notification, got %q", resp.Payload.OK)
	}
	if resp.ReceivedAt != "2026-10-19T12:00:00Z" {
		t.Errorf("unexpected received_at %q", resp.ReceivedAt)
	}
}

func TestGetAssemblyNotFound(t *testing.T) {
	router := setupTestRouter(setupTestHandler())

	req := httptest.NewRequest(http.MethodGet, "/assemblies/unknown", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	router := setupTestRouter(setupTestHandler())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}
