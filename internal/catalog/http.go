package catalog

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/bookstand/internal/auth"
)

// Handlers はカタログ系エンドポイントのハンドラー群です。
// 公開ルートと customer ルートの両方から同じ実装を共有します。
type Handlers struct {
	store *Store
}

// NewHandlers は Handlers を作成します。
func NewHandlers(store *Store) *Handlers {
	return &Handlers{store: store}
}

// ListAll は GET / のハンドラーです。カタログ全体を返します。
func (h *Handlers) ListAll(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.All())
}

// GetByISBN は GET /isbn/:isbn のハンドラーです。
func (h *Handlers) GetByISBN(c *gin.Context) {
	book, err := h.store.ByISBN(c.Param("isbn"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// GetByAuthor は GET /author/:author のハンドラーです。
func (h *Handlers) GetByAuthor(c *gin.Context) {
	books, err := h.store.ByAuthor(c.Param("author"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

// GetByTitle は GET /title/:title のハンドラーです。
func (h *Handlers) GetByTitle(c *gin.Context) {
	books, err := h.store.ByTitle(c.Param("title"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

// GetReviews は GET /review/:isbn のハンドラーです。
func (h *Handlers) GetReviews(c *gin.Context) {
	reviews, err := h.store.Reviews(c.Param("isbn"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

type reviewRequest struct {
	ReviewText string `json:"reviewText" binding:"required"`
	Rating     int    `json:"rating" binding:"required"`
}

// UpsertReview は POST /auth/review/:isbn のハンドラーです。
// 同一ユーザーの再投稿は既存レビューの上書きになります。
func (h *Handlers) UpsertReview(c *gin.Context) {
	username := auth.CurrentUser(c)
	if username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    "UNAUTHENTICATED",
			"message": "レビューを投稿するにはログインが必要です。",
		})
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    CodeMissingFields,
			"message": "reviewText と rating を JSON で送ってください。",
		})
		return
	}

	if err := h.store.UpsertReview(c.Param("isbn"), username, req.ReviewText, req.Rating); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "レビューを登録しました。"})
}

// DeleteReview は DELETE /auth/review/:isbn のハンドラーです。
func (h *Handlers) DeleteReview(c *gin.Context) {
	username := auth.CurrentUser(c)
	if username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    "UNAUTHENTICATED",
			"message": "レビューを削除するにはログインが必要です。",
		})
		return
	}

	if err := h.store.DeleteReview(c.Param("isbn"), username); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "レビューを削除しました。"})
}

func respondWithError(c *gin.Context, err error) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		status := http.StatusInternalServerError
		switch apiErr.Code {
		case CodeMissingFields:
			status = http.StatusBadRequest
		case CodeBookNotFound, CodeReviewNotFound:
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "INTERNAL_ERROR",
		"message": "サーバー内部でエラーが発生しました。",
	})
}
