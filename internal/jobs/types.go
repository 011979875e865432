package jobs

import "time"

// Status はカタログ更新ジョブの実行状態を表します。
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "done"
	StatusFailed    Status = "error"
)

// ErrorInfo はジョブ失敗時のエラー情報を保持します。
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Record はカタログ更新ジョブの現在状態を表します。
type Record struct {
	JobID     string     `json:"jobId"`
	Status    Status     `json:"status"`
	BookCount int        `json:"bookCount"`
	Added     int        `json:"added"`
	Error     *ErrorInfo `json:"error,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
}
