// Package auth は認証・認可機能を提供します。
package auth

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/bookstand/internal/users"
)

const (
	SessionCookieName = "bs_session"
	sessionKeyUser    = "auth_user"
	sessionKeyToken   = "access_token"

	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

var (
	loginWindow      = 15 * time.Minute
	lockDuration     = 10 * time.Minute
	maxLoginAttempts = 5
)

// ContextUserKey は、ハンドラー間でログイン済みユーザー名を共有するためのキーです。
// 保護ルートでは検証済みトークンのユーザー名だけを現在ユーザーの情報源とします。
const ContextUserKey = "auth.user"

// CurrentUser はリクエストに紐付いた現在ユーザー名を返します。未認証なら空文字です。
func CurrentUser(c *gin.Context) string {
	return c.GetString(ContextUserKey)
}

type attemptState struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// Manager は認証処理と状態をまとめた構造体です。
type Manager struct {
	users    *users.Store
	tokens   *TokenIssuer
	lock     sync.Mutex
	attempts map[string]*attemptState
}

// NewManager は認証マネージャーを作成します。
func NewManager(users *users.Store, tokens *TokenIssuer) *Manager {
	return &Manager{
		users:    users,
		tokens:   tokens,
		attempts: make(map[string]*attemptState),
	}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register は POST /register のハンドラーです。
func (m *Manager) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "MISSING_FIELDS",
			"message": "username と password を JSON で送ってください。",
		})
		return
	}

	switch err := m.users.Register(req.Username, req.Password); err {
	case nil:
		c.JSON(http.StatusOK, gin.H{"message": "ユーザー登録が完了しました。"})
	case users.ErrMissingFields:
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "MISSING_FIELDS",
			"message": "username と password は必須です。",
		})
	case users.ErrAlreadyExists:
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "ALREADY_EXISTS",
			"message": "このユーザー名は既に使われています。",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "ユーザー登録に失敗しました。",
		})
	}
}

// Login は POST /login のハンドラーです。
// 成功時はトークンをセッションとレスポンス本文の両方で返します。
func (m *Manager) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "MISSING_FIELDS",
			"message": "username と password を JSON で送ってください。",
		})
		return
	}

	ip := c.ClientIP()
	if retryAfter := m.checkLock(ip); retryAfter > 0 {
		c.Header("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds()), 10))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"code":    "TOO_MANY_ATTEMPTS",
			"message": "一定時間後に再度お試しください。",
		})
		return
	}

	if err := m.users.Authenticate(req.Username, req.Password); err != nil {
		// ユーザー不在とパスワード不一致で応答を変えない
		m.recordFailure(ip)
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    "INVALID_CREDENTIALS",
			"message": "ユーザー名またはパスワードが正しくありません。",
		})
		return
	}

	m.resetAttempts(ip)

	token, err := m.tokens.Issue(req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "TOKEN_GENERATION_FAILED",
			"message": "アクセストークンの生成に失敗しました。",
		})
		return
	}

	session := sessions.Default(c)
	session.Set(sessionKeyUser, req.Username)
	session.Set(sessionKeyToken, token)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "SESSION_SAVE_FAILED",
			"message": "セッションの保存に失敗しました。",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "ログインしました。",
		"accessToken": token,
	})
}

// RequireToken は保護ルート用のミドルウェアを返します。
// セッションに紐付いたトークンを優先し、なければ Authorization ヘッダーを参照します。
// 検証に成功した場合、トークンに埋め込まれたユーザー名を現在ユーザーとして設定します。
func (m *Manager) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.resolveToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "アクセストークンが指定されていません。",
			})
			return
		}

		username, err := m.tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    "FORBIDDEN",
				"message": "アクセストークンが無効か期限切れです。",
			})
			return
		}

		c.Set(ContextUserKey, username)
		c.Next()
	}
}

func (m *Manager) resolveToken(c *gin.Context) string {
	session := sessions.Default(c)
	if token, ok := session.Get(sessionKeyToken).(string); ok && token != "" {
		return token
	}

	header := strings.TrimSpace(c.GetHeader(authorizationHeader))
	return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
}

func (m *Manager) checkLock(ip string) time.Duration {
	m.lock.Lock()
	defer m.lock.Unlock()

	state, ok := m.attempts[ip]
	if !ok {
		return 0
	}
	now := time.Now()
	if now.After(state.lockedUntil) {
		return 0
	}
	return time.Until(state.lockedUntil)
}

func (m *Manager) recordFailure(ip string) int {
	m.lock.Lock()
	defer m.lock.Unlock()

	now := time.Now()
	state, ok := m.attempts[ip]
	if !ok || now.Sub(state.firstAttempt) > loginWindow {
		state = &attemptState{firstAttempt: now}
		m.attempts[ip] = state
	}

	state.count++
	if state.count >= maxLoginAttempts {
		state.lockedUntil = now.Add(lockDuration)
		state.count = maxLoginAttempts
	}

	remaining := maxLoginAttempts - state.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

func (m *Manager) resetAttempts(ip string) {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.attempts, ip)
}
