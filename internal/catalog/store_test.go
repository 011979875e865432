package catalog

import (
	"errors"
	"testing"
)

func newTestStore() *Store {
	return NewStore(map[string]Book{
		"8": {Title: "Pride and Prejudice", Author: "Jane Austen"},
		"1": {Title: "Things Fall Apart", Author: "Chinua Achebe"},
	})
}

func TestByAuthorCaseInsensitive(t *testing.T) {
	store := newTestStore()

	upper, err := store.ByAuthor("Jane Austen")
	if err != nil {
		t.Fatalf("ByAuthor returned error: %v", err)
	}
	lower, err := store.ByAuthor("jane austen")
	if err != nil {
		t.Fatalf("ByAuthor (lowercase) returned error: %v", err)
	}

	if len(upper) != 1 || len(lower) != 1 {
		t.Fatalf("unexpected result sizes: %d vs %d", len(upper), len(lower))
	}
	if upper[0].ISBN != lower[0].ISBN {
		t.Fatalf("case-insensitive lookup returned different books: %s vs %s", upper[0].ISBN, lower[0].ISBN)
	}
}

func TestByAuthorUnknown(t *testing.T) {
	store := newTestStore()

	_, err := store.ByAuthor("Nobody")
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Code != CodeBookNotFound {
		t.Fatalf("expected BOOK_NOT_FOUND, got %v", err)
	}
}

func TestByTitleSubstring(t *testing.T) {
	store := newTestStore()

	books, err := store.ByTitle("pride")
	if err != nil {
		t.Fatalf("ByTitle returned error: %v", err)
	}
	if len(books) != 1 || books[0].Title != "Pride and Prejudice" {
		t.Fatalf("unexpected result: %#v", books)
	}
}

func TestUpsertReviewOverwrites(t *testing.T) {
	store := newTestStore()

	if err := store.UpsertReview("8", "Alice", "good", 4); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if err := store.UpsertReview("8", "alice", "great", 5); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	reviews, err := store.Reviews("8")
	if err != nil {
		t.Fatalf("Reviews returned error: %v", err)
	}
	if len(reviews) != 1 {
		t.Fatalf("expected exactly one review, got %d", len(reviews))
	}

	review, ok := reviews["review_alice"]
	if !ok {
		t.Fatalf("expected key review_alice, got %#v", reviews)
	}
	if review.ReviewText != "great" || review.Rating != 5 {
		t.Fatalf("expected second submission to win, got %#v", review)
	}
}

func TestDeleteReview(t *testing.T) {
	store := newTestStore()

	if err := store.UpsertReview("8", "alice", "great", 5); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := store.DeleteReview("8", "alice"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	var apiErr *Error
	if err := store.DeleteReview("8", "alice"); !errors.As(err, &apiErr) || apiErr.Code != CodeReviewNotFound {
		t.Fatalf("expected REVIEW_NOT_FOUND for missing review, got %v", err)
	}
	if err := store.DeleteReview("999", "alice"); !errors.As(err, &apiErr) || apiErr.Code != CodeBookNotFound {
		t.Fatalf("expected BOOK_NOT_FOUND for missing book, got %v", err)
	}
}

func TestReviewsEmpty(t *testing.T) {
	store := newTestStore()

	var apiErr *Error
	if _, err := store.Reviews("1"); !errors.As(err, &apiErr) || apiErr.Code != CodeReviewNotFound {
		t.Fatalf("expected REVIEW_NOT_FOUND for zero reviews, got %v", err)
	}
	if _, err := store.Reviews("999"); !errors.As(err, &apiErr) || apiErr.Code != CodeBookNotFound {
		t.Fatalf("expected BOOK_NOT_FOUND for missing book, got %v", err)
	}
}

func TestAllReturnsSnapshot(t *testing.T) {
	store := newTestStore()

	snapshot := store.All()
	if len(snapshot) != 2 {
		t.Fatalf("unexpected snapshot size: %d", len(snapshot))
	}

	// スナップショットの変更がストアへ波及しないこと
	snapshot["8"].Reviews["review_mallory"] = Review{User: "mallory"}
	if _, err := store.Reviews("8"); err == nil {
		t.Fatal("mutating a snapshot must not affect the store")
	}
}

func TestMergeKeepsLocalReviews(t *testing.T) {
	store := newTestStore()
	if err := store.UpsertReview("8", "alice", "great", 5); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	added := store.Merge(map[string]Book{
		"8":  {Title: "Pride and Prejudice (Annotated)", Author: "Jane Austen"},
		"42": {Title: "New Arrival", Author: "Somebody"},
	})
	if added != 1 {
		t.Fatalf("expected 1 added book, got %d", added)
	}

	book, err := store.ByISBN("8")
	if err != nil {
		t.Fatalf("ByISBN failed: %v", err)
	}
	if book.Title != "Pride and Prejudice (Annotated)" {
		t.Fatalf("expected title to be updated, got %q", book.Title)
	}
	if _, ok := book.Reviews["review_alice"]; !ok {
		t.Fatal("merge must keep local reviews")
	}

	if _, err := store.ByISBN("42"); err != nil {
		t.Fatalf("expected new book to be added: %v", err)
	}
}
