// Package users はユーザー資格情報の登録と検証を提供します。
package users

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrMissingFields はユーザー名またはパスワードが空の場合のエラーです。
	ErrMissingFields = errors.New("username and password are required")
	// ErrAlreadyExists は同名ユーザーが登録済みの場合のエラーです。
	ErrAlreadyExists = errors.New("username already exists")
	// ErrInvalidCredentials は認証失敗時のエラーです。
	// ユーザー不在とパスワード不一致は区別しません。
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Store はプロセス存続期間のユーザーストアです。
// パスワードは bcrypt ハッシュで保持します（平文では保存しない）。
type Store struct {
	mu    sync.Mutex
	users map[string][]byte
}

// NewStore は空の Store を作成します。
func NewStore() *Store {
	return &Store{users: make(map[string][]byte)}
}

// Register は新規ユーザーを登録します。ユーザー名の一意性は登録時に保証されます。
func (s *Store) Register(username, password string) error {
	if username == "" || password == "" {
		return ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return ErrAlreadyExists
	}
	s.users[username] = hash
	return nil
}

// Authenticate はユーザー名とパスワードを検証します。
// どの段階で失敗したかは呼び出し側へ漏らしません。
func (s *Store) Authenticate(username, password string) error {
	s.mu.Lock()
	hash, ok := s.users[username]
	s.mu.Unlock()

	if !ok {
		// 未登録ユーザーでも比較コストを揃える
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Exists はユーザーが登録済みかどうかを返します。
func (s *Store) Exists(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[username]
	return ok
}

var dummyHash = mustHash("bookstand-dummy-password")

func mustHash(password string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
}
