// Package catalog は書籍カタログの保持・検索・レビュー管理機能を提供します。
package catalog

import "strings"

// Book は書籍レコードを表します。レビューはユーザーごとのキーで保持します。
type Book struct {
	ISBN    string            `json:"isbn"`
	Title   string            `json:"title"`
	Author  string            `json:"author"`
	Reviews map[string]Review `json:"reviews"`
}

// Review は1ユーザーが1冊の書籍に対して投稿するレビューを表します。
type Review struct {
	User       string `json:"user"`
	ReviewText string `json:"reviewText"`
	Rating     int    `json:"rating"`
}

// ReviewKey はレビューの格納キーを返します。
// キーはユーザー名から決定的に導出されるため、1ユーザーにつき1冊1レビューが保証されます。
func ReviewKey(username string) string {
	return "review_" + strings.ToLower(username)
}
