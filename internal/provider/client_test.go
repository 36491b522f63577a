package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/plumechat/plume/internal/turn"
)

func TestClientSend(t *testing.T) {
	t.Parallel()

	var gotReq chatRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(chatResponse{Reply: "it says hello"})
	}))
	defer srv.Close()

	client := NewClient(nil, NewAdapter(nil), srv.URL, "secret", time.Second)
	reply, err := client.Send(context.Background(), "About the user:\n- name: Alice", []turn.Part{
		{Kind: turn.PartDocumentText, Text: "[File: note.txt]\n\nhello"},
		{Kind: turn.PartText, Text: "what does it say?"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "it says hello" {
		t.Fatalf("reply = %q", reply)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotReq.System == "" {
		t.Fatal("system prompt not sent")
	}
	if len(gotReq.Messages) != 1 || len(gotReq.Messages[0].Content) != 2 {
		t.Fatalf("unexpected message shape: %+v", gotReq.Messages)
	}
	if gotReq.Messages[0].Role != RoleUser {
		t.Fatalf("role = %q", gotReq.Messages[0].Role)
	}
}

func TestClientSend_GatewayError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(nil, NewAdapter(nil), srv.URL, "", time.Second)
	_, err := client.Send(context.Background(), "", []turn.Part{{Kind: turn.PartText, Text: "hi"}})
	if err == nil {
		t.Fatal("expected error from non-2xx response")
	}
}

func TestClientSend_AdaptFailureSkipsNetwork(t *testing.T) {
	t.Parallel()

	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := NewClient(nil, NewAdapter(nil), srv.URL, "", time.Second)
	_, err := client.Send(context.Background(), "", []turn.Part{
		{Kind: turn.PartImage, DataURI: "https://example.com/x.png"},
	})
	if err == nil {
		t.Fatal("expected adapt error")
	}
	if called {
		t.Fatal("gateway must not be called when adaptation fails")
	}
}
