package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spurchat/chat"
	"spurchat/config"
	"spurchat/model"
	"spurchat/storage"
)

type stubGenerator struct {
	reply string
}

func (g stubGenerator) GenerateReply(ctx context.Context, history []model.Message, msg string) (string, error) {
	return g.reply, nil
}

type failingService struct {
	err   error
	panic bool
}

func (f failingService) ProcessMessage(ctx context.Context, message, sessionID string) (*chat.Result, error) {
	if f.panic {
		panic("kaboom")
	}
	return nil, f.err
}

func (f failingService) GetConversationHistory(ctx context.Context, sessionID string) ([]model.Message, error) {
	return nil, f.err
}

func newTestServer(t *testing.T, svc ChatService, opts Options) http.Handler {
	t.Helper()
	opts.Logger = zerolog.Nop()
	s, err := New(svc, opts)
	require.NoError(t, err)
	return s.Handler()
}

func newChatServer(t *testing.T) http.Handler {
	svc := chat.NewService(storage.NewMemoryStore(), stubGenerator{reply: "Happy to help!"})
	return newTestServer(t, svc, Options{})
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestPostMessage_NewSession(t *testing.T) {
	h := newChatServer(t)

	rec := do(t, h, http.MethodPost, "/api/chat/message", `{"message":"Do you ship to Canada?"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	body := decode(t, rec)
	assert.Equal(t, "Happy to help!", body["reply"])
	sessionID, _ := body["sessionId"].(string)
	assert.True(t, isUUID(sessionID))

	hist := do(t, h, http.MethodGet, "/api/chat/history/"+sessionID, "")
	require.Equal(t, http.StatusOK, hist.Code)

	var resp struct {
		Messages []model.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(hist.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, model.SenderUser, resp.Messages[0].Sender)
	assert.Equal(t, model.SenderAI, resp.Messages[1].Sender)
	assert.Equal(t, sessionID, resp.Messages[0].ConversationID)
}

func TestPostMessage_ContinuesSession(t *testing.T) {
	h := newChatServer(t)

	first := decode(t, do(t, h, http.MethodPost, "/api/chat/message", `{"message":"hello"}`))
	id := first["sessionId"].(string)

	second := decode(t, do(t, h, http.MethodPost, "/api/chat/message",
		`{"message":"again","sessionId":"`+id+`"}`))
	assert.Equal(t, id, second["sessionId"])
}

func TestPostMessage_StaleSessionGetsNewID(t *testing.T) {
	h := newChatServer(t)
	stale := uuid.NewString()

	body := decode(t, do(t, h, http.MethodPost, "/api/chat/message",
		`{"message":"hello","sessionId":"`+stale+`"}`))
	assert.NotEqual(t, stale, body["sessionId"])
}

func TestPostMessage_SchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing message", `{}`},
		{"empty message", `{"message":""}`},
		{"wrong type", `{"message":42}`},
		{"too long", `{"message":"` + strings.Repeat("x", 2001) + `"}`},
		{"bad session id", `{"message":"hi","sessionId":"not-a-uuid"}`},
		{"not json", `message=hi`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newChatServer(t), http.MethodPost, "/api/chat/message", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			body := decode(t, rec)
			assert.Equal(t, "Invalid request", body["error"])
			details, ok := body["details"].([]any)
			require.True(t, ok, "details must be a list")
			assert.NotEmpty(t, details)
		})
	}
}

func TestPostMessage_MissingMessageDetail(t *testing.T) {
	rec := do(t, newChatServer(t), http.MethodPost, "/api/chat/message", `{"sessionId":"`+uuid.NewString()+`"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "required", resp.Details[0].Code)
}

func TestPostMessage_WhitespaceOnlyIsBadRequest(t *testing.T) {
	rec := do(t, newChatServer(t), http.MethodPost, "/api/chat/message", `{"message":"    "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "Message cannot be empty", resp.Details[0].Message)
}

func TestPostMessage_ServiceError(t *testing.T) {
	h := newTestServer(t, failingService{err: &chat.PersistenceError{Op: "save user message", Err: errors.New("disk full")}}, Options{})

	rec := do(t, h, http.MethodPost, "/api/chat/message", `{"message":"hello"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Internal server error", body["error"])
	assert.Equal(t, "save user message: disk full", body["message"])
}

func TestPostMessage_Panic(t *testing.T) {
	h := newTestServer(t, failingService{panic: true}, Options{})

	rec := do(t, h, http.MethodPost, "/api/chat/message", `{"message":"hello"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "An unexpected error occurred", decode(t, rec)["message"])

	dev := newTestServer(t, failingService{panic: true}, Options{Development: true})
	rec = do(t, dev, http.MethodPost, "/api/chat/message", `{"message":"hello"}`)
	assert.Equal(t, "kaboom", decode(t, rec)["message"])
}

func TestPostMessage_BodyTooLarge(t *testing.T) {
	big := `{"message":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	rec := do(t, newChatServer(t), http.MethodPost, "/api/chat/message", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHistory(t *testing.T) {
	h := newChatServer(t)

	rec := do(t, h, http.MethodGet, "/api/chat/history/not-a-uuid", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid session ID format", decode(t, rec)["error"])

	rec = do(t, h, http.MethodGet, "/api/chat/history/"+uuid.NewString(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"messages":[]}`, rec.Body.String())
}

func TestHistory_ServiceError(t *testing.T) {
	h := newTestServer(t, failingService{err: errors.New("db gone")}, Options{})

	rec := do(t, h, http.MethodGet, "/api/chat/history/"+uuid.NewString(), "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "db gone", decode(t, rec)["message"])
}

func TestHealthAndIndex(t *testing.T) {
	h := newChatServer(t)

	rec := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ok", body["status"])
	_, err := time.Parse(time.RFC3339Nano, body["timestamp"].(string))
	assert.NoError(t, err)

	rec = do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, "Spur Store Chatbot API", body["message"])
	assert.Equal(t, "1.0.0", body["version"])
}

func TestNotFound(t *testing.T) {
	h := newChatServer(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/nope"},
		{http.MethodGet, "/api/chat/message"},
		{http.MethodPost, "/health"},
	} {
		rec := do(t, h, tc.method, tc.path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tc.method, tc.path)
		assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
	}
}

func TestCORS(t *testing.T) {
	h := newTestServer(t, chat.NewService(storage.NewMemoryStore(), stubGenerator{reply: "ok"}),
		Options{FrontendURL: "https://shop.example.com/"})

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"http://localhost:3000", true},
		{"http://localhost:5173", true},
		{"https://shop.example.com", true},
		{"https://spur-chat.vercel.app", true},
		{"https://evil.example.com", false},
		{"http://localhost:8080", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, "/health", "", "Origin", tt.origin)
			if tt.allowed {
				assert.Equal(t, http.StatusOK, rec.Code)
				assert.Equal(t, tt.origin, rec.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
			} else {
				assert.Equal(t, http.StatusForbidden, rec.Code)
				assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestCORS_DefaultConfigUsesAllowList(t *testing.T) {
	svc := chat.NewService(storage.NewMemoryStore(), stubGenerator{reply: "ok"})
	h := newTestServer(t, svc, OptionsFromConfig(config.Defaults(), zerolog.Nop()))

	rec := do(t, h, http.MethodGet, "/health", "", "Origin", "https://evil.example.com")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(t, h, http.MethodGet, "/health", "", "Origin", "http://localhost:5173")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS_PreflightAndDevelopment(t *testing.T) {
	h := newTestServer(t, failingService{}, Options{Development: true})

	rec := do(t, h, http.MethodOptions, "/api/chat/message", "",
		"Origin", "http://anything.local",
		"Access-Control-Request-Method", "POST")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://anything.local", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
}

func TestCORS_NoOriginPassesThrough(t *testing.T) {
	rec := do(t, newChatServer(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestIsUUID(t *testing.T) {
	assert.True(t, isUUID("5b0a6f0e-8d5c-4a65-9d8e-2b7c1c7d9f10"))
	assert.True(t, isUUID("5B0A6F0E-8D5C-4A65-9D8E-2B7C1C7D9F10"))
	assert.False(t, isUUID("5b0a6f0e8d5c4a659d8e2b7c1c7d9f10"))
	assert.False(t, isUUID("urn:uuid:5b0a6f0e-8d5c-4a65-9d8e-2b7c1c7d9f10"))
	assert.False(t, isUUID("../../etc/passwd"))
}

func TestServe_GracefulShutdown(t *testing.T) {
	svc := chat.NewService(storage.NewMemoryStore(), stubGenerator{reply: "ok"})
	s, err := New(svc, Options{Logger: zerolog.Nop()})
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, listener) }()

	resp, err := http.Get("http://" + listener.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
