package project

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/shouni/go-previz-kit/pkg/domain"
)

// ErrFrameNotFound は更新対象のショットが現在の状態に存在しないことを示します。
var ErrFrameNotFound = errors.New("frame not found")

// ErrStale は結果が同じショットへの新しいリクエストに追い越されたことを示します。
var ErrStale = errors.New("result superseded by a newer request")

// Stage はショットに対する生成工程です。
type Stage int

const (
	StageStill Stage = iota
	StageUpscaleImage
	StageVideo
	StageUpscaleVideo
)

// stageStatus は工程ごとの 実行中 / 完了 のステータスです。静止画生成には実行中の段階がありません。
var stageStatus = map[Stage]struct{ running, ready domain.FrameStatus }{
	StageStill:        {domain.StatusGeneratedStill, domain.StatusGeneratedStill},
	StageUpscaleImage: {domain.StatusUpscalingImage, domain.StatusUpscaledImageReady},
	StageVideo:        {domain.StatusRenderingVideo, domain.StatusAnimatedVideoReady},
	StageUpscaleVideo: {domain.StatusUpscalingVideo, domain.StatusUpscaledVideoReady},
}

// State は1つのプロジェクトの ScriptAnalysis を保持します。
// 変更はすべて「現在の状態を読み、新しい状態を作り、丸ごと差し替える」関数として適用されます。
type State struct {
	mu       sync.RWMutex
	id       string
	analysis domain.ScriptAnalysis
	version  int
}

// NewState は解析結果から State を作ります。
func NewState(analysis domain.ScriptAnalysis) *State {
	return &State{id: uuid.NewString(), analysis: analysis.Clone()}
}

// Restore は保存済みのプロジェクトから State を復元します。
func Restore(id string, analysis domain.ScriptAnalysis) *State {
	return &State{id: id, analysis: analysis.Clone()}
}

// ID はプロジェクト ID を返します。
func (s *State) ID() string { return s.id }

// Version は適用済みの更新回数を返します。
func (s *State) Version() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Snapshot は現在の状態の複製を返します。
func (s *State) Snapshot() domain.ScriptAnalysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analysis.Clone()
}

// Update は fn に現在の状態の複製を渡し、返された状態で丸ごと差し替えます。
// fn がエラーを返すか、結果が ID の不変条件を満たさない場合は何も変わりません。
func (s *State) Update(fn func(domain.ScriptAnalysis) (domain.ScriptAnalysis, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.analysis.Clone())
	if err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("update rejected: %w", err)
	}
	s.analysis = next
	s.version++
	return nil
}

// UpdateFrame は適用時点の状態から sceneID と frameID でショットを探し直して fn を適用します。
// 非同期の完了が古い位置情報で別のショットを書き換えることはありません。
func (s *State) UpdateFrame(sceneID, frameID string, fn func(*domain.Frame) error) error {
	return s.Update(func(a domain.ScriptAnalysis) (domain.ScriptAnalysis, error) {
		si, ok := a.FindScene(sceneID)
		if !ok {
			return a, fmt.Errorf("%w: scene %s", ErrFrameNotFound, sceneID)
		}
		fi, ok := a.Scenes[si].FindFrame(frameID)
		if !ok {
			return a, fmt.Errorf("%w: %s/%s", ErrFrameNotFound, sceneID, frameID)
		}
		if err := fn(&a.Scenes[si].Frames[fi]); err != nil {
			return a, err
		}
		return a, nil
	})
}

// SetFrameStatus はステータス遷移を検証してから適用します。
func (s *State) SetFrameStatus(sceneID, frameID string, to domain.FrameStatus) error {
	return s.UpdateFrame(sceneID, frameID, func(f *domain.Frame) error {
		next, err := domain.Transition(f.Status, to)
		if err != nil {
			return err
		}
		f.Status = next
		return nil
	})
}

// BeginStage は工程の開始をショットに記録します。
func (s *State) BeginStage(sceneID, frameID string, stage Stage) error {
	st, ok := stageStatus[stage]
	if !ok {
		return fmt.Errorf("unknown stage %d", stage)
	}
	if st.running == st.ready {
		return nil
	}
	return s.SetFrameStatus(sceneID, frameID, st.running)
}

// ApplyResult は生成結果をショットに反映します。失敗した結果は Error ステータスになります。
func (s *State) ApplyResult(sceneID, frameID string, stage Stage, r domain.GenerationResult) error {
	return s.ApplyResultIf(sceneID, frameID, stage, r, nil)
}

// ApplyResultIf は current が true を返す場合だけ ApplyResult と同じ反映を行い、false なら ErrStale を返します。
// current は状態のロックを保持したまま呼ばれます。nil なら常に反映します。
func (s *State) ApplyResultIf(sceneID, frameID string, stage Stage, r domain.GenerationResult, current func() bool) error {
	st, ok := stageStatus[stage]
	if !ok {
		return fmt.Errorf("unknown stage %d", stage)
	}
	return s.UpdateFrame(sceneID, frameID, func(f *domain.Frame) error {
		if current != nil && !current() {
			return ErrStale
		}
		to := st.ready
		if r.Failed() || r.URL == "" {
			to = domain.StatusError
		}
		next, err := domain.Transition(f.Status, to)
		if err != nil {
			return err
		}
		f.Status = next
		if to == domain.StatusError {
			return nil
		}

		switch stage {
		case StageStill:
			f.Media.ImageURL = r.URL
		case StageUpscaleImage:
			f.Media.UpscaledImageURL = r.URL
		case StageVideo:
			f.Media.VideoURL = r.URL
		case StageUpscaleVideo:
			f.Media.UpscaledVideoURL = r.URL
		}
		return nil
	})
}
