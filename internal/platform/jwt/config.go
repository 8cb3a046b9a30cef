package jwtmw

import (
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

const (
	// EnvKeyWorkspaceSecret はWorkspaceトークンの署名鍵を指定する環境変数です。
	EnvKeyWorkspaceSecret = "WORKSPACE_SECRET"
	// EnvKeyWorkspaceTTL はWorkspaceの保持期間を指定する環境変数です（例: "30m"）。
	EnvKeyWorkspaceTTL = "WORKSPACE_TTL"

	// DefaultTTL はWorkspaceの既定の保持期間です。
	DefaultTTL = time.Hour
)

// Config はWorkspaceトークンの設定です。
type Config struct {
	Secret string
	TTL    time.Duration
}

// LoadConfig は環境変数から設定を読み込みます。
// 署名鍵が未設定の場合は起動ごとにランダムな鍵を生成するため、再起動でWorkspaceは失われます。
func LoadConfig() Config {
	secret := os.Getenv(EnvKeyWorkspaceSecret)
	if secret == "" {
		slog.Warn("WORKSPACE_SECRET が未設定のためランダムな署名鍵を使用します")
		secret = uuid.NewString()
	}

	ttl := DefaultTTL
	if s := os.Getenv(EnvKeyWorkspaceTTL); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			slog.Warn("WORKSPACE_TTL が不正なため既定値を使用します", "value", s, "error", err)
		} else {
			ttl = d
		}
	}

	return Config{Secret: secret, TTL: ttl}
}
