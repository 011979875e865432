package catalog

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/bookstand/internal/auth"
)

func newTestRouter(store *Store, username string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandlers(store)

	router := gin.New()
	if username != "" {
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextUserKey, username)
		})
	}
	router.GET("/", h.ListAll)
	router.GET("/isbn/:isbn", h.GetByISBN)
	router.GET("/author/:author", h.GetByAuthor)
	router.GET("/title/:title", h.GetByTitle)
	router.GET("/review/:isbn", h.GetReviews)
	router.POST("/auth/review/:isbn", h.UpsertReview)
	router.DELETE("/auth/review/:isbn", h.DeleteReview)
	return router
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to parse response: %v (body=%s)", err, rec.Body.String())
	}
	return payload
}

func TestGetByISBN(t *testing.T) {
	router := newTestRouter(newTestStore(), "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/isbn/8", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	payload := decodeBody(t, rec)
	if payload["title"] != "Pride and Prejudice" {
		t.Fatalf("unexpected book: %#v", payload)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/isbn/999", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown isbn, got %d", rec.Code)
	}
	if payload := decodeBody(t, rec); payload["code"] != CodeBookNotFound {
		t.Fatalf("unexpected code: %v", payload["code"])
	}
}

func TestGetReviewsNotFound(t *testing.T) {
	router := newTestRouter(newTestStore(), "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/review/1", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for book without reviews, got %d", rec.Code)
	}
}

func TestUpsertReviewUnauthenticated(t *testing.T) {
	router := newTestRouter(newTestStore(), "")

	body := bytes.NewBufferString(`{"reviewText":"great","rating":5}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/review/8", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}
}

func TestUpsertReviewMissingFields(t *testing.T) {
	router := newTestRouter(newTestStore(), "alice")

	body := bytes.NewBufferString(`{"reviewText":"great"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/review/8", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing rating, got %d", rec.Code)
	}
	if payload := decodeBody(t, rec); payload["code"] != CodeMissingFields {
		t.Fatalf("unexpected code: %v", payload["code"])
	}
}

func TestUpsertAndDeleteReview(t *testing.T) {
	store := newTestStore()
	router := newTestRouter(store, "Alice")

	body := bytes.NewBufferString(`{"reviewText":"great","rating":5}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/review/8", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert failed: %d body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/review/8", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected reviews after upsert, got %d", rec.Code)
	}
	if payload := decodeBody(t, rec); payload["review_alice"] == nil {
		t.Fatalf("expected key review_alice, got %#v", payload)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/auth/review/8", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete failed: %d body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/auth/review/8", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for repeated delete, got %d", rec.Code)
	}
}
