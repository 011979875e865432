package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/bookstand/internal/auth"
	"github.com/yourusername/bookstand/internal/catalog"
)

// setupRoutes は公開ルートと customer ルートの配線を行います。
// カタログ検索は両ルートツリーで同じハンドラーを共有します。
func setupRoutes(router *gin.Engine, authManager *auth.Manager, h *catalog.Handlers, health gin.HandlerFunc) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", health)

	// 公開カタログ検索
	router.GET("/", h.ListAll)
	router.GET("/isbn/:isbn", h.GetByISBN)
	router.GET("/author/:author", h.GetByAuthor)
	router.GET("/title/:title", h.GetByTitle)
	router.GET("/review/:isbn", h.GetReviews)

	// ユーザー登録とログイン
	router.POST("/register", authManager.Register)
	router.POST("/login", authManager.Login)

	// 認証必須のレビュー操作
	authRoutes := router.Group("/auth", authManager.RequireToken())
	{
		authRoutes.POST("/review/:isbn", h.UpsertReview)
		authRoutes.DELETE("/review/:isbn", h.DeleteReview)
	}

	// customer ルートツリー（公開ルートと同じカタログ実装を共有する）
	customer := router.Group("/customer")
	{
		// 歴史的経緯により customer 側の register はスタブのまま残している
		customer.POST("/register", handleNotImplemented)
		customer.POST("/login", authManager.Login)

		customer.GET("/isbn/:isbn", h.GetByISBN)
		customer.GET("/author/:author", h.GetByAuthor)
		customer.GET("/title/:title", h.GetByTitle)
		customer.GET("/review/:isbn", h.GetReviews)

		customerAuth := customer.Group("/auth", authManager.RequireToken())
		{
			customerAuth.POST("/review/:isbn", h.UpsertReview)
			customerAuth.DELETE("/review/:isbn", h.DeleteReview)
		}
	}
}

func handleNotImplemented(c *gin.Context) {
	c.JSON(http.StatusMultipleChoices, gin.H{"message": "Yet to be implemented"})
}
