// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// 認証設定
	SessionSecret   string // セッションクッキー署名用の秘密鍵
	TokenSecret     string // アクセストークン署名用の秘密鍵
	TokenTTLMinutes int    // アクセストークンの有効期間（分）

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// 上流カタログ設定
	UpstreamCatalogURL     string // 書籍一覧を取得する外部エンドポイント（空なら無効）
	UpstreamTimeoutSeconds int    // 上流取得のタイムアウト（秒）

	// キャッシュ/キュー設定
	CacheRedisURL          string // カタログスナップショットキャッシュ用Redis接続URL
	QueueRedisURL          string // Asynq用Redis接続URL
	CatalogRefreshMinutes  int    // カタログ更新ジョブの実行間隔（分）
	CatalogCacheTTLMinutes int    // スナップショットキャッシュの有効期限（分）
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	config := &Config{
		// サーバー設定
		Port:    getEnv("PORT", "5000"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// 認証設定
		SessionSecret:   getEnv("SESSION_SECRET", ""),
		TokenSecret:     getEnv("TOKEN_SECRET", ""),
		TokenTTLMinutes: getEnvAsInt("TOKEN_TTL_MINUTES", 60),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		// 上流カタログ設定
		UpstreamCatalogURL:     getEnv("UPSTREAM_CATALOG_URL", ""),
		UpstreamTimeoutSeconds: getEnvAsInt("UPSTREAM_TIMEOUT_SECONDS", 5),

		// キャッシュ/キュー設定
		CacheRedisURL:          getEnv("CACHE_REDIS_URL", "redis://127.0.0.1:6379/0"),
		QueueRedisURL:          getEnv("QUEUE_REDIS_URL", "redis://127.0.0.1:6379/0"),
		CatalogRefreshMinutes:  getEnvAsInt("CATALOG_REFRESH_MINUTES", 15),
		CatalogCacheTTLMinutes: getEnvAsInt("CATALOG_CACHE_TTL_MINUTES", 60),
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	// ローカル開発では秘密鍵は任意
	// 本番環境では厳格にチェックする
	if c.GinMode == "release" {
		if c.SessionSecret == "" {
			return fmt.Errorf("SESSION_SECRET is required in release mode")
		}
		if c.TokenSecret == "" {
			return fmt.Errorf("TOKEN_SECRET is required in release mode")
		}
	}

	if c.TokenTTLMinutes <= 0 {
		return fmt.Errorf("TOKEN_TTL_MINUTES must be positive")
	}
	if c.UpstreamCatalogURL != "" && c.UpstreamTimeoutSeconds <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT_SECONDS must be positive when UPSTREAM_CATALOG_URL is set")
	}

	return nil
}

// TokenTTL はアクセストークンの有効期間を返します。
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// UpstreamTimeout は上流カタログ取得のタイムアウトを返します。
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSeconds) * time.Second
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
