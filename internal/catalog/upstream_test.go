package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"8":{"title":"Pride and Prejudice","author":"Jane Austen","reviews":{}}}`))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL, time.Second)
	snapshot, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(snapshot) != 1 || snapshot["8"].Author != "Jane Austen" {
		t.Fatalf("unexpected snapshot: %#v", snapshot)
	}
}

func TestFetchNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL, time.Second)
	_, err := fetcher.Fetch(context.Background())

	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Code != CodeUpstreamUnavailable {
		t.Fatalf("expected UPSTREAM_UNAVAILABLE, got %v", err)
	}
}

func TestFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL, 10*time.Millisecond)
	_, err := fetcher.Fetch(context.Background())

	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Code != CodeUpstreamUnavailable {
		t.Fatalf("expected UPSTREAM_UNAVAILABLE on timeout, got %v", err)
	}
}

func TestFetchInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not-json"))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL, time.Second)
	if _, err := fetcher.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
