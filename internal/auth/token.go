package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims はアクセストークンに埋め込む情報です。
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// TokenIssuer は署名付きアクセストークンの発行と検証を行います。
// トークンは自己完結しており、検証は署名と有効期限のみで完結します。
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer は TokenIssuer を作成します。秘密鍵は設定から渡されます。
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue はユーザー名を埋め込んだアクセストークンを発行します。
func (t *TokenIssuer) Issue(username string) (string, error) {
	if username == "" {
		return "", errors.New("username is required")
	}

	issuedAt := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(t.ttl)),
		},
		Username: username,
	})
	return token.SignedString(t.secret)
}

// Verify はトークンの署名と有効期限を検証し、埋め込まれたユーザー名を返します。
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tk.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
		// 発行時刻+TTLちょうどまでは受理する（expは秒精度）
		jwt.WithLeeway(time.Second),
		jwt.WithTimeFunc(func() time.Time { return t.now() }),
	)
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Username == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.Username, nil
}
