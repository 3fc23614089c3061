package prompts

import "github.com/shouni/go-previz-kit/pkg/domain"

// TextPrompt は、テキスト生成用のプロンプトを構築する契約です。
type TextPrompt interface {
	// Build は、指定されたモード（analyze, director, moodboard）とデータからプロンプト文字列を生成します。
	Build(mode string, data TemplateData) (string, error)
}

// ImagePrompt は、ショットの静止画用プロンプトを構築する契約です。
type ImagePrompt interface {
	// BuildFrame は、ショットのプロンプトと、ストック素材選択にも使う seed を返します。
	BuildFrame(a *domain.ScriptAnalysis, scene domain.Scene, frame domain.Frame) (prompt string, seed string)
}
