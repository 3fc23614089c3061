package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shouni/go-previz-kit/internal/config"
	"github.com/shouni/go-previz-kit/pkg/domain"
	"github.com/shouni/go-previz-kit/pkg/project"
	"github.com/shouni/go-previz-kit/pkg/publisher"
	"github.com/shouni/go-previz-kit/pkg/workflow"
)

var renderStills bool

// analyzeCmd は脚本をシーンとショットに分解して絵コンテを書き出すのだ。
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "脚本を解析して絵コンテを書き出すのだ。",
	Long: `脚本をシーン・ショット・キャラクター・ロケーションに分解して、
project.json と storyboard.md を出力するのだ。AI が使えないときはオフライン解析になるのだよ。`,
	RunE: analyzeCommand,
}

func init() {
	analyzeCmd.Flags().StringVarP(&opts.ScriptFile, "script-file", "f", "", "脚本ファイルのパス（'-'で標準入力なのだ）。")
	analyzeCmd.Flags().StringVar(&opts.ProjectID, "project", "", "保存済みプロジェクトの ID なのだ（DATABASE_URL が必要なのだ）。")
	analyzeCmd.Flags().BoolVar(&renderStills, "render", false, "全ショットの静止画も生成するのだ。")
	analyzeCmd.Flags().StringVar(&opts.AspectRatio, "aspect", config.DefaultAspectRatio, "静止画の縦横比なのだ。")
}

func analyzeCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ar, err := domain.ParseAspectRatio(opts.AspectRatio)
	if err != nil {
		return err
	}

	m, err := newManager(ctx)
	if err != nil {
		return err
	}
	defer m.Close()

	if opts.ProjectID != "" {
		st, err := m.LoadProject(ctx, opts.ProjectID)
		if err != nil {
			return fmt.Errorf("プロジェクトの読み込みに失敗したのだ: %w", err)
		}
		if renderStills {
			renderAllStills(ctx, m, st, ar)
		}
		return writeProject(ctx, m, st)
	}

	raw, err := readScript(opts.ScriptFile)
	if err != nil {
		return err
	}
	st, res, err := m.AnalyzeScript(ctx, raw)
	if err != nil {
		return fmt.Errorf("脚本の解析に失敗したのだ: %w", err)
	}
	if res.Notice != "" {
		slog.Warn(res.Notice)
	}
	slog.Info("脚本を解析したのだ！", "project", st.ID(), "scenes", len(res.Analysis.Scenes), "offline", res.FromFallback)

	if renderStills {
		renderAllStills(ctx, m, st, ar)
	}
	return writeProject(ctx, m, st)
}

// renderAllStills は全ショットの静止画を順に生成するのだ。失敗したショットは Error になるだけで止まらないのだ。
func renderAllStills(ctx context.Context, m *workflow.Manager, st *project.State, ar domain.AspectRatio) {
	for _, sc := range st.Snapshot().Scenes {
		for _, f := range sc.Frames {
			out, err := m.GenerateFrame(ctx, st, workflow.FrameRequest{
				SceneID:     sc.ID,
				FrameID:     f.ID,
				Stage:       project.StageStill,
				AspectRatio: ar,
			})
			switch {
			case err != nil:
				slog.Error("ショットの生成に失敗したのだ", "frame", f.ID, "error", err)
			case out.Result.Failed():
				slog.Error("ショットの生成に失敗したのだ", "frame", f.ID, "error", out.Result.Error)
			case out.Result.Notice != "":
				slog.Warn(out.Result.Notice, "frame", f.ID)
			}
		}
	}
}

// writeProject は project.json と storyboard.md を書き出すのだ。
func writeProject(ctx context.Context, m *workflow.Manager, st *project.State) error {
	snap := st.Snapshot()
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	jsonPath := filepath.Join(opts.OutputDir, "project.json")
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("project.json の保存に失敗したのだ: %w", err)
	}

	res, err := m.Publisher().Publish(ctx, snap, publisher.Options{OutputDir: opts.OutputDir})
	if err != nil {
		return fmt.Errorf("絵コンテの書き出しに失敗したのだ: %w", err)
	}
	slog.Info("成果物を保存したのだ！", "project", jsonPath, "storyboard", res.MarkdownPath, "images", len(res.ImagePaths))
	return nil
}
