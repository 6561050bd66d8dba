package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPublishDigestPostsForm(t *testing.T) {
	t.Parallel()

	var gotPath, gotChat, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = r.ParseForm()
		gotChat = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier("token", "42")
	n.apiBase = srv.URL

	if err := n.PublishDigest(context.Background(), "run finished: 3 services"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if gotPath != "/bottoken/sendMessage" || gotChat != "42" || gotText != "run finished: 3 services" {
		t.Fatalf("unexpected request: path=%s chat=%s text=%q", gotPath, gotChat, gotText)
	}
}

func TestPublishDigestErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewNotifier("token", "42")
	n.apiBase = srv.URL
	if err := n.PublishDigest(context.Background(), "x"); err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestPublishDigestMisconfigured(t *testing.T) {
	t.Parallel()

	if err := NewNotifier("", "").PublishDigest(context.Background(), "x"); err == nil {
		t.Fatalf("expected misconfiguration error")
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("ж", maxMessageLen+10)
	got := truncate(long, maxMessageLen)
	if utf8.RuneCountInString(got) != maxMessageLen || !strings.HasSuffix(got, "…") {
		t.Fatalf("unexpected truncation: %d runes", utf8.RuneCountInString(got))
	}
	if truncate("short", maxMessageLen) != "short" {
		t.Fatalf("short text changed")
	}
}
