package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetchArticleHTMLFollowsRedirects(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>article body</body></html>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	htmlBody, base, err := FetchArticleHTML(context.Background(), server.URL+"/start", FetchOptions{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("FetchArticleHTML failed: %v", err)
	}
	if !strings.Contains(htmlBody, "article body") {
		t.Fatalf("body = %q", htmlBody)
	}
	if base == nil || base.Path != "/final" {
		t.Fatalf("base = %v, want final URL after redirect", base)
	}
}

func TestFetchArticleHTMLSendsBrowserUserAgent(t *testing.T) {
	t.Parallel()

	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	if _, _, err := FetchArticleHTML(context.Background(), server.URL, FetchOptions{}); err != nil {
		t.Fatalf("FetchArticleHTML failed: %v", err)
	}
	if !strings.Contains(gotUA, "Mozilla/5.0") {
		t.Fatalf("user agent = %q", gotUA)
	}
}

func TestFetchArticleHTMLNonOKStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	if _, _, err := FetchArticleHTML(context.Background(), server.URL, FetchOptions{}); err == nil {
		t.Fatal("expected error for 403 response")
	}
}

func TestFetchArticleHTMLBodyLimit(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer server.Close()

	htmlBody, _, err := FetchArticleHTML(context.Background(), server.URL, FetchOptions{BodyByteLimit: 1024})
	if err != nil {
		t.Fatalf("FetchArticleHTML failed: %v", err)
	}
	if len(htmlBody) != 1024 {
		t.Fatalf("body length = %d, want capped at 1024", len(htmlBody))
	}
}

func TestExtractSnippetTruncates(t *testing.T) {
	t.Parallel()

	paragraph := strings.Repeat("Prediction markets moved sharply after the announcement. ", 20)
	htmlBody := "<html><head><title>Story</title></head><body><article><p>" + paragraph + "</p></article></body></html>"

	got := ExtractSnippet(htmlBody, nil, 120)
	if got == "" {
		t.Fatal("snippet is empty")
	}
	if len([]rune(got)) > 120 {
		t.Fatalf("snippet length = %d runes, want <= 120", len([]rune(got)))
	}
}

func TestExtractSnippetEmptyInput(t *testing.T) {
	t.Parallel()

	if got := ExtractSnippet("   ", nil, 100); got != "" {
		t.Fatalf("snippet = %q, want empty", got)
	}
}
