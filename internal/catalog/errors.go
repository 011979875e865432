package catalog

// エラーコード一覧。HTTP境界でステータスコードへ変換されます。
const (
	CodeMissingFields       = "MISSING_FIELDS"
	CodeBookNotFound        = "BOOK_NOT_FOUND"
	CodeReviewNotFound      = "REVIEW_NOT_FOUND"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
)

// Error はカタログ操作のエラーを表します。
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Err: cause}
}
