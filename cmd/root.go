package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/shouni/go-previz-kit/internal/config"
	"github.com/shouni/go-previz-kit/pkg/workflow"
)

var (
	opts    config.GenerateOptions
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:           "previz",
	Short:         "脚本から絵コンテとプレビズ素材を作るのだ。",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		})))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "デバッグログを出すのだ。")
	rootCmd.PersistentFlags().BoolVar(&opts.Offline, "offline", false, "AI を呼ばずにオフライン素材だけで動かすのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", config.DefaultOutputDir, "成果物の保存先ディレクトリなのだ。")

	rootCmd.AddCommand(analyzeCmd, generateCmd, chatCmd, keyCmd)
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "エラー:", err)
		os.Exit(1)
	}
}

// newManager は環境変数とフラグから Manager を組み立てるのだ。
func newManager(ctx context.Context) (*workflow.Manager, error) {
	cfg := config.LoadConfig()
	if opts.Offline {
		cfg.Workflow.ForceOffline = true
	}
	m, err := workflow.New(ctx, cfg.Workflow)
	if err != nil {
		return nil, fmt.Errorf("初期化に失敗したのだ: %w", err)
	}
	return m, nil
}

// readScript は --script-file か標準入力から脚本を読むのだ。
func readScript(path string) (string, error) {
	var r io.Reader
	switch {
	case path == "" && !isStdin():
		return "", nil
	case path == "" || path == "-":
		r = os.Stdin
	default:
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("脚本ファイル '%s' の読み込みに失敗したのだ: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(string(b), "\r\n", "\n"), nil
}

func isStdin() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
