package kiffetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/game.kif":
			_, _ = w.Write([]byte("   1 ７六歩(77)   ( 0:03/00:00:03)\n"))
		case "/huge.kif":
			_, _ = w.Write(make([]byte, maxRecordBytes+1))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient()
	ctx := context.Background()

	text, err := c.Fetch(ctx, srv.URL+"/game.kif")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(text, "７六歩") {
		t.Fatalf("unexpected body %q", text)
	}

	if _, err := c.Fetch(ctx, srv.URL+"/missing.kif"); err == nil {
		t.Fatal("expected error on 404")
	}
	if _, err := c.Fetch(ctx, srv.URL+"/huge.kif"); err == nil {
		t.Fatal("expected error on oversized record")
	}
}

func TestFetchRejectsNonHTTPSchemes(t *testing.T) {
	c := NewClient()
	for _, raw := range []string{"file:///etc/passwd", "ftp://host/game.kif", "notaurl"} {
		if _, err := c.Fetch(context.Background(), raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
