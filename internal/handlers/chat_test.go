package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/plumechat/plume/internal/attachment"
	"github.com/plumechat/plume/internal/provider"
	"github.com/plumechat/plume/internal/turn"
)

const testChatID = "11111111-1111-1111-1111-111111111111"

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

type recordingSaver struct {
	chatID string
	turnID string
	parts  []turn.Part
}

func (s *recordingSaver) SaveTurnParts(_ context.Context, chatID, turnID string, parts []turn.Part) error {
	s.chatID = chatID
	s.turnID = turnID
	s.parts = parts
	return nil
}

type fakePartReader struct {
	parts []turn.Part
	err   error
}

func (r *fakePartReader) ListTurnParts(_ context.Context, _ string) ([]turn.Part, error) {
	return r.parts, r.err
}

func newChatTestServer(t *testing.T, gatewayReply string, saver turn.PartSaver, reader PartReader) (*echo.Echo, func()) {
	t.Helper()

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"reply": gatewayReply})
	}))

	adapter := provider.NewAdapter(nil)
	client := provider.NewClient(nil, adapter, gateway.URL, "", time.Second)
	pipeline := turn.NewPipeline(nil, turn.NewAssembler(nil, 0), nil, saver, adapter, turn.PipelineOptions{})
	handler := NewChatHandler(newTestLogger(), pipeline, client, nil, reader, 0)

	e := echo.New()
	e.Validator = &testValidator{validate: validator.New()}
	handler.Register(e)
	return e, gateway.Close
}

func postTurn(e *echo.Echo, chatID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chats/"+chatID+"/turns", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSubmitTurn_TextAndAttachment(t *testing.T) {
	t.Parallel()

	e, cleanup := newChatTestServer(t, "it says hello", nil, nil)
	defer cleanup()

	body := `{
		"user_id": "u1",
		"text": "what does the note say?",
		"attachments": [{
			"name": "note.txt",
			"media_type": "text/plain",
			"data": "` + base64.StdEncoding.EncodeToString([]byte("hello")) + `"
		}]
	}`
	rec := postTurn(e, testChatID, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp turnResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Reply != "it says hello" {
		t.Fatalf("reply = %q", resp.Reply)
	}
	if resp.State != string(turn.StateSubmitted) {
		t.Fatalf("state = %q", resp.State)
	}
	if resp.TurnID == "" {
		t.Fatal("turn_id missing")
	}
}

func TestSubmitTurn_InvalidChatID(t *testing.T) {
	t.Parallel()

	e, cleanup := newChatTestServer(t, "", nil, nil)
	defer cleanup()

	rec := postTurn(e, "not-a-uuid", `{"user_id": "u1", "text": "hi"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "chat_id") {
		t.Fatalf("error does not name chat_id: %s", rec.Body.String())
	}
}

func TestSubmitTurn_PersistsPartsWithValidIDs(t *testing.T) {
	t.Parallel()

	saver := &recordingSaver{}
	e, cleanup := newChatTestServer(t, "ok", saver, nil)
	defer cleanup()

	rec := postTurn(e, testChatID, `{"user_id": "u1", "text": "remember this"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if saver.chatID != testChatID {
		t.Fatalf("saved chat id = %q", saver.chatID)
	}
	if _, err := uuid.Parse(saver.turnID); err != nil {
		t.Fatalf("saved turn id not a UUID: %q", saver.turnID)
	}
	if len(saver.parts) != 1 || saver.parts[0].Text != "remember this" {
		t.Fatalf("unexpected saved parts: %+v", saver.parts)
	}
}

func TestSubmitTurn_UnsupportedMediaType(t *testing.T) {
	t.Parallel()

	e, cleanup := newChatTestServer(t, "", nil, nil)
	defer cleanup()

	body := `{
		"user_id": "u1",
		"attachments": [{
			"name": "clip.mp4",
			"media_type": "video/mp4",
			"data": "` + base64.StdEncoding.EncodeToString([]byte("x")) + `"
		}]
	}`
	rec := postTurn(e, testChatID, body)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestSubmitTurn_CorruptPDFRejected(t *testing.T) {
	t.Parallel()

	e, cleanup := newChatTestServer(t, "", nil, nil)
	defer cleanup()

	body := `{
		"user_id": "u1",
		"text": "summarize this",
		"attachments": [{
			"name": "broken.pdf",
			"media_type": "application/pdf",
			"data": "` + base64.StdEncoding.EncodeToString([]byte("definitely not a pdf")) + `"
		}]
	}`
	rec := postTurn(e, testChatID, body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "broken.pdf") {
		t.Fatalf("rejection does not name the artifact: %s", rec.Body.String())
	}
}

func TestSubmitTurn_InvalidBase64(t *testing.T) {
	t.Parallel()

	e, cleanup := newChatTestServer(t, "", nil, nil)
	defer cleanup()

	body := `{
		"user_id": "u1",
		"attachments": [{
			"name": "note.txt",
			"media_type": "text/plain",
			"data": "%%%not-base64%%%"
		}]
	}`
	rec := postTurn(e, testChatID, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestSubmitTurn_EmptyTurn(t *testing.T) {
	t.Parallel()

	e, cleanup := newChatTestServer(t, "", nil, nil)
	defer cleanup()

	rec := postTurn(e, testChatID, `{"user_id": "u1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestSubmitTurn_OversizedAttachment(t *testing.T) {
	t.Parallel()

	e, cleanup := newChatTestServer(t, "", nil, nil)
	defer cleanup()

	big := strings.Repeat("a", int(attachment.MaxArtifactBytes)+4)
	body := `{
		"user_id": "u1",
		"attachments": [{
			"name": "huge.txt",
			"media_type": "text/plain",
			"data": "` + base64.StdEncoding.EncodeToString([]byte(big)) + `"
		}]
	}`
	rec := postTurn(e, testChatID, body)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDecodeAttachmentBase64(t *testing.T) {
	t.Parallel()

	encoded := base64.StdEncoding.EncodeToString([]byte("hello"))
	got, err := decodeAttachmentBase64(encoded, 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("decoded = %q", string(got))
	}
}

func TestDecodeAttachmentBase64_EnforcesLimit(t *testing.T) {
	t.Parallel()

	encoded := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("a", 64)))
	_, err := decodeAttachmentBase64(encoded, 16)
	if !errors.Is(err, attachment.ErrArtifactTooLarge) {
		t.Fatalf("expected ErrArtifactTooLarge, got %v", err)
	}
}

func TestTurnParts(t *testing.T) {
	t.Parallel()

	reader := &fakePartReader{parts: []turn.Part{
		{Kind: turn.PartDocumentText, Text: "[File: a.txt]\n\nhi", SourceName: "a.txt"},
		{Kind: turn.PartText, Text: "what does it say?"},
	}}
	e, cleanup := newChatTestServer(t, "", nil, reader)
	defer cleanup()

	turnID := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/chats/"+testChatID+"/turns/"+turnID+"/parts", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var parts []turn.Part
	if err := json.Unmarshal(rec.Body.Bytes(), &parts); err != nil {
		t.Fatalf("decode parts: %v", err)
	}
	if len(parts) != 2 || parts[0].SourceName != "a.txt" {
		t.Fatalf("unexpected parts: %+v", parts)
	}
}

func TestTurnParts_InvalidTurnID(t *testing.T) {
	t.Parallel()

	e, cleanup := newChatTestServer(t, "", nil, &fakePartReader{})
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/chats/"+testChatID+"/turns/nope/parts", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}
