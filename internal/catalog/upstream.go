package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Fetcher は外部エンドポイントから書籍一覧を取得します。
// 取得失敗は呼び出し側で空の結果として扱われる前提です（一覧APIは常に200を返す）。
type Fetcher struct {
	url    string
	client *http.Client
}

// NewFetcher は Fetcher を作成します。タイムアウトは必須です。
func NewFetcher(url string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch は上流から書籍スナップショットを取得します。
// ネットワークエラー・非2xx応答・不正なJSONはすべてエラーとして返します。
func (f *Fetcher) Fetch(ctx context.Context) (map[string]Book, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, newError(CodeUpstreamUnavailable, "上流カタログのリクエスト生成に失敗しました。", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, newError(CodeUpstreamUnavailable, "上流カタログへの接続に失敗しました。", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(CodeUpstreamUnavailable,
			fmt.Sprintf("上流カタログが異常なステータスを返しました: %d", resp.StatusCode), nil)
	}

	var snapshot map[string]Book
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, newError(CodeUpstreamUnavailable, "上流カタログの応答を解析できませんでした。", err)
	}
	return snapshot, nil
}
