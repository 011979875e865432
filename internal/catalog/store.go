package catalog

import (
	"sort"
	"strings"
	"sync"
)

// Store はISBNをキーとする書籍カタログを保持します。
// 複数のリクエストから同時に参照・更新されるため、RWMutexで保護します。
type Store struct {
	mu    sync.RWMutex
	books map[string]Book
}

// NewStore は初期データ付きの Store を作成します。
func NewStore(seed map[string]Book) *Store {
	books := make(map[string]Book, len(seed))
	for isbn, book := range seed {
		book.ISBN = isbn
		if book.Reviews == nil {
			book.Reviews = make(map[string]Review)
		}
		books[isbn] = book
	}
	return &Store{books: books}
}

// All はカタログ全体のスナップショットを返します。
func (s *Store) All() map[string]Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string]Book, len(s.books))
	for isbn, book := range s.books {
		snapshot[isbn] = copyBook(book)
	}
	return snapshot
}

// Len は登録されている書籍数を返します。
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}

// ByISBN はISBNで書籍を検索します。
func (s *Store) ByISBN(isbn string) (Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[isbn]
	if !ok {
		return Book{}, newError(CodeBookNotFound, "指定されたISBNの書籍が見つかりません。", nil)
	}
	return copyBook(book), nil
}

// ByAuthor は著者名の完全一致（大文字小文字は無視）で書籍を検索します。
func (s *Store) ByAuthor(author string) ([]Book, error) {
	needle := strings.ToLower(author)

	s.mu.RLock()
	result := make([]Book, 0)
	for _, book := range s.books {
		if strings.ToLower(book.Author) == needle {
			result = append(result, copyBook(book))
		}
	}
	s.mu.RUnlock()

	if len(result) == 0 {
		return nil, newError(CodeBookNotFound, "指定された著者の書籍が見つかりません。", nil)
	}
	sortBooks(result)
	return result, nil
}

// ByTitle はタイトルの部分一致（大文字小文字は無視）で書籍を検索します。
func (s *Store) ByTitle(title string) ([]Book, error) {
	needle := strings.ToLower(title)

	s.mu.RLock()
	result := make([]Book, 0)
	for _, book := range s.books {
		if strings.Contains(strings.ToLower(book.Title), needle) {
			result = append(result, copyBook(book))
		}
	}
	s.mu.RUnlock()

	if len(result) == 0 {
		return nil, newError(CodeBookNotFound, "指定されたタイトルの書籍が見つかりません。", nil)
	}
	sortBooks(result)
	return result, nil
}

// Reviews は書籍のレビュー一覧を返します。レビューが1件もない場合はエラーです。
func (s *Store) Reviews(isbn string) (map[string]Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[isbn]
	if !ok {
		return nil, newError(CodeBookNotFound, "指定されたISBNの書籍が見つかりません。", nil)
	}
	if len(book.Reviews) == 0 {
		return nil, newError(CodeReviewNotFound, "この書籍にはまだレビューがありません。", nil)
	}

	reviews := make(map[string]Review, len(book.Reviews))
	for key, review := range book.Reviews {
		reviews[key] = review
	}
	return reviews, nil
}

// UpsertReview はユーザーのレビューを登録します。
// 同一ユーザーが再投稿した場合は既存レビューを上書きします。
func (s *Store) UpsertReview(isbn, username, reviewText string, rating int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[isbn]
	if !ok {
		return newError(CodeBookNotFound, "指定されたISBNの書籍が見つかりません。", nil)
	}

	book.Reviews[ReviewKey(username)] = Review{
		User:       username,
		ReviewText: reviewText,
		Rating:     rating,
	}
	return nil
}

// DeleteReview はユーザーのレビューを削除します。
func (s *Store) DeleteReview(isbn, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[isbn]
	if !ok {
		return newError(CodeBookNotFound, "指定されたISBNの書籍が見つかりません。", nil)
	}

	key := ReviewKey(username)
	if _, ok := book.Reviews[key]; !ok {
		return newError(CodeReviewNotFound, "このユーザーのレビューは登録されていません。", nil)
	}

	delete(book.Reviews, key)
	return nil
}

// Merge は上流スナップショットをカタログへ取り込みます。
// 既存書籍のタイトル・著者は更新しますが、ローカルのレビューは保持します。
func (s *Store) Merge(snapshot map[string]Book) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for isbn, incoming := range snapshot {
		if isbn == "" {
			isbn = incoming.ISBN
		}
		if isbn == "" {
			continue
		}

		existing, ok := s.books[isbn]
		if !ok {
			incoming.ISBN = isbn
			incoming.Reviews = make(map[string]Review)
			s.books[isbn] = incoming
			added++
			continue
		}

		// 上流の欠損フィールドでローカルの値を消さない
		if incoming.Title != "" {
			existing.Title = incoming.Title
		}
		if incoming.Author != "" {
			existing.Author = incoming.Author
		}
		s.books[isbn] = existing
	}
	return added
}

func copyBook(book Book) Book {
	reviews := make(map[string]Review, len(book.Reviews))
	for key, review := range book.Reviews {
		reviews[key] = review
	}
	book.Reviews = reviews
	return book
}

func sortBooks(books []Book) {
	sort.Slice(books, func(i, j int) bool {
		return books[i].ISBN < books[j].ISBN
	})
}
