// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"crypto/rand"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/bookstand/internal/auth"
	"github.com/yourusername/bookstand/internal/catalog"
	"github.com/yourusername/bookstand/internal/config"
	"github.com/yourusername/bookstand/internal/users"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	// セッションストアの設定（クッキー署名鍵は設定から供給する）
	store := cookie.NewStore(secretOrRandom(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.TokenTTL().Seconds()),
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteStrictMode,
	})
	router.Use(sessions.Sessions(auth.SessionCookieName, store))

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	// CORS許可オリジンを設定（カンマ区切りの文字列を配列に変換）
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowOrigins = origins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
	}
	router.Use(cors.New(corsConfig))

	// ストアとハンドラーの組み立て
	bookStore := catalog.NewStore(catalog.DefaultBooks())
	userStore := users.NewStore()
	tokenIssuer := auth.NewTokenIssuer(secretOrRandom(cfg.TokenSecret), cfg.TokenTTL())
	authManager := auth.NewManager(userStore, tokenIssuer)
	catalogHandlers := catalog.NewHandlers(bookStore)

	// 上流カタログが設定されていれば更新ジョブを起動する
	refreshManager, err := setupRefresh(cfg, bookStore)
	if err != nil {
		log.Fatalf("Failed to set up catalog refresh: %v", err)
	}
	if refreshManager != nil {
		refreshManager.StartWorkers()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = refreshManager.Shutdown(ctx)
		}()
	}

	// ルーティングの設定
	setupRoutes(router, authManager, catalogHandlers, handleHealth(bookStore, refreshManager))

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// secretOrRandom は設定された秘密鍵を返します。
// 未設定の場合（開発時のみ）はプロセス限りのランダム鍵を生成します。
func secretOrRandom(secret string) []byte {
	if secret != "" {
		return []byte(secret)
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("Failed to generate ephemeral secret: %v", err)
	}
	log.Println("WARNING: using an ephemeral secret; set SESSION_SECRET/TOKEN_SECRET for production")
	return buf
}
