package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shouni/go-utils/envutil"

	"github.com/shouni/go-previz-kit/pkg/workflow"
)

// デフォルト値の定義です。
const (
	DefaultOutputDir   = "output"
	DefaultAspectRatio = "16:9"
	DefaultVariants    = 1
)

// Config はアプリケーション全体の環境設定を保持します。
type Config struct {
	Workflow workflow.Config
	Options  GenerateOptions
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータです。
type GenerateOptions struct {
	ScriptFile  string // --script-file
	OutputDir   string // --output-dir
	ProjectID   string // --project
	AspectRatio string // --aspect
	Count       int    // --count
	Offline     bool   // --offline
}

// LoadConfig は .env と環境変数から設定を読み込みます。
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn(".env の読み込みに失敗しました", "error", err)
	}

	wf := workflow.DefaultConfig()
	wf.GeminiAPIKey = envutil.GetEnv("GEMINI_API_KEY", "")
	wf.GeminiModel = envutil.GetEnv("GEMINI_MODEL", workflow.DefaultGeminiModel)
	wf.ImageModel = envutil.GetEnv("IMAGE_GEMINI_MODEL", workflow.DefaultImageModel)
	wf.ImageProvider = strings.ToLower(envutil.GetEnv("IMAGE_PROVIDER", workflow.DefaultImageProvider))
	wf.TogetherAPIKey = envutil.GetEnv("TOGETHER_API_KEY", "")
	wf.TogetherModel = envutil.GetEnv("TOGETHER_MODEL", "")
	wf.StyleSuffix = envutil.GetEnv("IMAGE_PROMPT_SUFFIX", workflow.DefaultStyleSuffix)
	wf.RedisURL = envutil.GetEnv("REDIS_URL", "")
	wf.DatabaseURL = envutil.GetEnv("DATABASE_URL", "")
	wf.ForceOffline = parseBool("PREVIZ_FORCE_OFFLINE", false)
	wf.MaxVariants = parseInt("PREVIZ_MAX_VARIANTS", wf.MaxVariants)
	wf.RateInterval = parseDuration("PREVIZ_RATE_INTERVAL", wf.RateInterval)

	return &Config{Workflow: wf}
}

func parseBool(key string, def bool) bool {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("環境変数の値を解釈できません。既定値を使います", "key", key, "value", raw)
		return def
	}
	return v
}

func parseInt(key string, def int) int {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		slog.Warn("環境変数の値を解釈できません。既定値を使います", "key", key, "value", raw)
		return def
	}
	return v
}

func parseDuration(key string, def time.Duration) time.Duration {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		slog.Warn("環境変数の値を解釈できません。既定値を使います", "key", key, "value", raw)
		return def
	}
	return v
}
