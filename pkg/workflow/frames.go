package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shouni/go-previz-kit/pkg/analyzer"
	"github.com/shouni/go-previz-kit/pkg/domain"
	"github.com/shouni/go-previz-kit/pkg/generator"
	"github.com/shouni/go-previz-kit/pkg/project"
)

// FrameRequest はショット1つ分の生成指示です。
type FrameRequest struct {
	SceneID     string
	FrameID     string
	Stage       project.Stage
	AspectRatio domain.AspectRatio
	// ReferenceImages は利用者が明示した参照画像で、ムードボードより優先されます。
	ReferenceImages []string
	Progress        generator.ProgressFunc
}

// FrameOutcome は GenerateFrame の結果です。
type FrameOutcome struct {
	Result      domain.GenerationResult
	WasAdjusted bool
	// Stale は同じショットに対して新しい要求が発行されたため、結果を反映しなかったことを示します。
	Stale bool
}

// AnalyzeScript は脚本を解析して新しいプロジェクトを作ります。保存先があれば保存します。
func (m *Manager) AnalyzeScript(ctx context.Context, raw string) (*project.State, analyzer.AnalysisResult, error) {
	res, err := m.analyzer.AnalyzeScript(ctx, raw)
	if err != nil {
		return nil, res, err
	}
	st := project.NewState(res.Analysis)
	if err := m.SaveProject(ctx, st); err != nil {
		return st, res, err
	}
	return st, res, nil
}

// SaveProject は保存先が設定されていればプロジェクトを保存します。
func (m *Manager) SaveProject(ctx context.Context, st *project.State) error {
	if m.projects == nil {
		return nil
	}
	return m.projects.Save(ctx, st)
}

// LoadProject は保存済みのプロジェクトを読み込みます。
func (m *Manager) LoadProject(ctx context.Context, id string) (*project.State, error) {
	if m.projects == nil {
		return nil, fmt.Errorf("project store is not configured")
	}
	return m.projects.Load(ctx, id)
}

// GenerateFrame はショットのメディアを1枚生成し、結果をプロジェクトに反映します。
// 同じショットに新しい要求が出ていた場合、古い結果は反映せず Stale を立てて返します。
func (m *Manager) GenerateFrame(ctx context.Context, st *project.State, req FrameRequest) (FrameOutcome, error) {
	snap := st.Snapshot()
	si, ok := snap.FindScene(req.SceneID)
	if !ok {
		return FrameOutcome{}, fmt.Errorf("%w: scene %s", project.ErrFrameNotFound, req.SceneID)
	}
	scene := snap.Scenes[si]
	fi, ok := scene.FindFrame(req.FrameID)
	if !ok {
		return FrameOutcome{}, fmt.Errorf("%w: %s/%s", project.ErrFrameNotFound, req.SceneID, req.FrameID)
	}
	frame := scene.Frames[fi]

	prompt, seed := m.framePrompt.BuildFrame(&snap, scene, frame)
	genReq := domain.GenerationRequest{
		Prompt:          prompt,
		Seed:            seed,
		AspectRatio:     req.AspectRatio,
		Count:           1,
		ReferenceImages: append(stageReferences(req.Stage, frame), req.ReferenceImages...),
		Kind:            stageKind(req.Stage),
	}

	if err := st.BeginStage(req.SceneID, req.FrameID, req.Stage); err != nil {
		return FrameOutcome{}, err
	}

	scope := req.SceneID + "/" + req.FrameID
	reqID := m.tracker.Begin(scope)
	defer m.tracker.Done(scope, reqID)
	latest := func() bool { return m.tracker.IsLatest(scope, reqID) }

	res, err := m.orchestrator.GenerateWithMoodboard(ctx, genReq, snap.Moodboard, req.Progress)
	if err != nil {
		// 入力不備。ショットは Error に落とし、呼び出し元にもエラーを返す
		applyErr := st.ApplyResultIf(req.SceneID, req.FrameID, req.Stage, domain.GenerationResult{Error: err.Error()}, latest)
		if applyErr != nil && !errors.Is(applyErr, project.ErrStale) {
			slog.WarnContext(ctx, "ショットの状態更新に失敗しました", "frame", req.FrameID, "error", applyErr)
		}
		return FrameOutcome{}, err
	}

	out := FrameOutcome{Result: res.Results[0], WasAdjusted: res.WasAdjusted}
	// 最新かどうかの判定と反映は同じロックの中で行う
	if err := st.ApplyResultIf(req.SceneID, req.FrameID, req.Stage, out.Result, latest); err != nil {
		if errors.Is(err, project.ErrStale) {
			slog.InfoContext(ctx, "古い生成結果を破棄しました", "frame", req.FrameID)
			out.Stale = true
			return out, nil
		}
		return out, err
	}
	if err := m.SaveProject(ctx, st); err != nil {
		return out, fmt.Errorf("failed to persist project: %w", err)
	}
	return out, nil
}

// stageKind は工程に応じたメディアの種類を返します。
func stageKind(stage project.Stage) domain.MediaKind {
	switch stage {
	case project.StageVideo, project.StageUpscaleVideo:
		return domain.MediaVideo
	default:
		return domain.MediaImage
	}
}

// stageReferences は前工程の成果物を参照画像として返します。
func stageReferences(stage project.Stage, f domain.Frame) []string {
	var ref string
	switch stage {
	case project.StageUpscaleImage, project.StageVideo:
		ref = f.Media.ImageURL
		if stage == project.StageVideo && f.Media.UpscaledImageURL != "" {
			ref = f.Media.UpscaledImageURL
		}
	}
	if ref == "" {
		return nil
	}
	return []string{ref}
}
