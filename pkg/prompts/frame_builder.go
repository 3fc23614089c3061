package prompts

import (
	"fmt"
	"strings"

	"github.com/shouni/go-previz-kit/pkg/domain"
)

// CinematicTags は全ショットに共通する撮影面の指示です。
const CinematicTags = "cinematic film still, storyboard frame, 35mm, shallow depth of field, natural composition"

// FramePromptBuilder は、シーンとキャラクター情報からショットの画像プロンプトを構築します。
type FramePromptBuilder struct {
	defaultSuffix string
}

// NewFramePromptBuilder は新しい FramePromptBuilder を生成します。
func NewFramePromptBuilder(suffix string) *FramePromptBuilder {
	return &FramePromptBuilder{defaultSuffix: suffix}
}

// BuildFrame は、ショットの説明・シーンの雰囲気・登場キャラクターの外見を1つのプロンプトにまとめます。
// seed はショット ID なので、同じショットの再生成では同じストック素材が選ばれます。
func (pb *FramePromptBuilder) BuildFrame(a *domain.ScriptAnalysis, scene domain.Scene, frame domain.Frame) (string, string) {
	parts := []string{
		frame.Description,
		fmt.Sprintf("Setting: %s", scene.Setting),
		fmt.Sprintf("Time of day: %s", scene.TimeOfDay),
	}
	if scene.Mood != "" {
		parts = append(parts, fmt.Sprintf("Mood: %s", scene.Mood))
	}
	if scene.Lighting != "" {
		parts = append(parts, fmt.Sprintf("Lighting: %s", scene.Lighting))
	}

	// 説明文に名前が出てくるキャラクターだけ外見を添える
	if a != nil {
		text := strings.ToLower(frame.Description + " " + scene.Summary)
		for _, c := range a.Characters {
			if c.Name == "" || !strings.Contains(text, strings.ToLower(c.Name)) {
				continue
			}
			cues := c.Description
			if len(c.VisualCues) > 0 {
				cues = strings.Join(c.VisualCues, ", ")
			}
			if cues != "" {
				parts = append(parts, fmt.Sprintf("%s: %s", c.Name, cues))
			}
		}
	}

	parts = append(parts, CinematicTags)
	if pb.defaultSuffix != "" {
		parts = append(parts, pb.defaultSuffix)
	}

	var cleanParts []string
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			cleanParts = append(cleanParts, s)
		}
	}
	return strings.Join(cleanParts, ". "), frame.ID
}
