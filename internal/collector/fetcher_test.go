package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LJTian/NewsPusher/internal/config"
)

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != defaultUserAgent {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	f := NewHTTPFetcher()
	body, err := f.Fetch(context.Background(), srv.URL+"/list")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Fatalf("body = %q", body)
	}

	_, err = f.Fetch(context.Background(), srv.URL+"/missing")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fe.StatusCode != http.StatusNotFound {
		t.Fatalf("StatusCode = %d, want 404", fe.StatusCode)
	}
}

func TestHTTPFetcherTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	f := &HTTPFetcher{Client: &http.Client{Timeout: 50 * time.Millisecond}}
	_, err := f.Fetch(context.Background(), srv.URL)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError on timeout, got %v", err)
	}
}

func TestCollyFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusGone)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><p>hi</p></body></html>`))
	}))
	defer srv.Close()

	f := NewCollyFetcher()
	// 同一个 URL 连续抓取两次都应成功
	for i := 0; i < 2; i++ {
		body, err := f.Fetch(context.Background(), srv.URL+"/page")
		if err != nil {
			t.Fatalf("Fetch #%d error: %v", i, err)
		}
		if len(body) == 0 {
			t.Fatalf("Fetch #%d returned empty body", i)
		}
	}

	_, err := f.Fetch(context.Background(), srv.URL+"/gone")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Fetch(ctx, srv.URL+"/page"); !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError for cancelled context, got %v", err)
	}
}

func TestFetchersFor(t *testing.T) {
	fs := DefaultFetchers()
	if _, ok := fs.For(config.Source{IsStatic: true}).(*CollyFetcher); !ok {
		t.Error("static source should use colly")
	}
	if _, ok := fs.For(config.Source{}).(*HTTPFetcher); !ok {
		t.Error("structured source should use plain HTTP")
	}
	if _, ok := fs.For(config.Source{Format: "feed"}).(*HTTPFetcher); !ok {
		t.Error("feed source should use plain HTTP")
	}
}

func TestParseTimeValue(t *testing.T) {
	sec := parseTimeValue(float64(1700000000))
	ms := parseTimeValue(float64(1700000000000))
	if !sec.Equal(ms) {
		t.Fatalf("seconds and millis should agree: %v vs %v", sec, ms)
	}
	if !parseTimeValue("garbage text").IsZero() {
		t.Fatal("unparseable string should be unknown")
	}
	if !parseTimeValue(nil).IsZero() || !parseTimeValue(float64(-1)).IsZero() {
		t.Fatal("nil / negative should be unknown")
	}
	if got := parseTimeValue("2023-07-03T10:00:00Z"); got.UTC().Hour() != 10 {
		t.Fatalf("RFC3339 parse = %v", got)
	}
}
