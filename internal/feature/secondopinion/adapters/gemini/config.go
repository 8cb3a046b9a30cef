package gemini

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-pro"
	// DefaultTemperature は決定的寄りの低いサンプリング温度です。
	DefaultTemperature float32 = 0.3
)

// Config はGemini APIクライアントの設定を保持します。
type Config struct {
	APIKey      string        // 認証用APIキー（空の場合は呼び出し時に失敗）
	Model       string        // 使用するモデル名
	Temperature float32       // サンプリング温度
	Timeout     time.Duration // リクエスト全体のタイムアウト（0はトランスポートの既定値に従う）
	BaseURL     string        // エンドポイントの上書き（テスト・プロキシ用）
}

// LoadConfig は環境変数からGeminiの設定を読み込みます。
// 起動時に一度だけ呼び出し、解析処理の途中では読み込みません。
func LoadConfig() Config {
	cfg := Config{
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		Model:       os.Getenv("GEMINI_MODEL"),
		Temperature: DefaultTemperature,
		BaseURL:     os.Getenv("GEMINI_BASE_URL"),
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if v := os.Getenv("GEMINI_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.Temperature = float32(f)
		} else {
			slog.Warn("GEMINI_TEMPERATUREの解析に失敗、既定値を使用します", "value", v, "error", err)
		}
	}
	if v := os.Getenv("GEMINI_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		} else {
			slog.Warn("GEMINI_TIMEOUTの解析に失敗、タイムアウトなしで起動します", "value", v, "error", err)
		}
	}
	return cfg
}
