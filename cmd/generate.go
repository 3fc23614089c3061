package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shouni/go-previz-kit/internal/config"
	"github.com/shouni/go-previz-kit/pkg/domain"
)

var (
	genPrompt string
	genSeed   string
	genRefs   []string
	genVideo  bool
)

// generateCmd は1つのプロンプトから複数のバリエーションを生成するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "プロンプトから画像のバリエーションを生成するのだ。",
	Long: `プロンプトから指定枚数の画像（または動画）を同時に生成して、結果を JSON で出力するのだ。
一部が失敗しても残りは返ってくるし、クォータ切れのときはストック素材に差し替えるのだよ。`,
	RunE: generateCommand,
}

func init() {
	generateCmd.Flags().StringVarP(&genPrompt, "prompt", "p", "", "生成プロンプトなのだ。")
	generateCmd.Flags().StringVar(&genSeed, "seed", "", "ストック素材を選ぶための seed なのだ（未指定ならプロンプト）。")
	generateCmd.Flags().IntVarP(&opts.Count, "count", "n", config.DefaultVariants, "生成する枚数なのだ。")
	generateCmd.Flags().StringVar(&opts.AspectRatio, "aspect", config.DefaultAspectRatio, "縦横比なのだ。")
	generateCmd.Flags().StringSliceVar(&genRefs, "ref", nil, "参照画像の URL なのだ（最大5枚）。")
	generateCmd.Flags().BoolVar(&genVideo, "video", false, "動画を生成するのだ。")
	_ = generateCmd.MarkFlagRequired("prompt")
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ar, err := domain.ParseAspectRatio(opts.AspectRatio)
	if err != nil {
		return err
	}
	kind := domain.MediaImage
	if genVideo {
		kind = domain.MediaVideo
	}

	m, err := newManager(ctx)
	if err != nil {
		return err
	}
	defer m.Close()

	req := domain.GenerationRequest{
		Prompt:          genPrompt,
		Seed:            genSeed,
		AspectRatio:     ar,
		Count:           opts.Count,
		ReferenceImages: genRefs,
		Kind:            kind,
	}
	res, err := m.Orchestrator().GenerateVariants(ctx, req, func(index, percent int) {
		slog.Debug("progress", "attempt", index, "percent", percent)
	})
	if err != nil {
		return fmt.Errorf("生成リクエストが不正なのだ: %w", err)
	}
	if res.WasAdjusted {
		slog.Warn("リクエストを調整したのだ（枚数の上限または参照画像の重複）")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
