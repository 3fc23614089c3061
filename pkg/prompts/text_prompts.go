package prompts

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

const (
	ModeAnalyze   = "analyze"
	ModeDirector  = "director"
	ModeMoodboard = "moodboard"
)

// TemplateData はテキストプロンプトのテンプレートに渡すデータ構造です。
type TemplateData struct {
	InputText    string
	Title        string
	Logline      string
	SectionName  string
	SectionNotes string
	ImageCount   int
}

var (
	//go:embed analyze.md
	analyzeTemplate string
	//go:embed director.md
	directorTemplate string
	//go:embed moodboard.md
	moodboardTemplate string
)

// textMode はモードごとのテンプレートと、そのモードで必須の入力です。
type textMode struct {
	source   string
	required func(TemplateData) string
}

var textModes = map[string]textMode{
	ModeAnalyze: {analyzeTemplate, func(d TemplateData) string {
		if strings.TrimSpace(d.InputText) == "" {
			return "script text"
		}
		return ""
	}},
	ModeDirector: {directorTemplate, func(d TemplateData) string {
		if strings.TrimSpace(d.InputText) == "" {
			return "question"
		}
		return ""
	}},
	ModeMoodboard: {moodboardTemplate, func(d TemplateData) string {
		if strings.TrimSpace(d.SectionName) == "" {
			return "section name"
		}
		return ""
	}},
}

// ScriptPromptBuilder は脚本解析・演出相談・ムードボード注記の各モードのプロンプトを組み立てます。
// テンプレートは1つのセットにまとめて解析し、モード名で実行します。
type ScriptPromptBuilder struct {
	set *template.Template
}

// NewScriptPromptBuilder は埋め込みテンプレートを解析します。空のテンプレートはエラーです。
func NewScriptPromptBuilder() (*ScriptPromptBuilder, error) {
	set := template.New("script")
	for mode, m := range textModes {
		if strings.TrimSpace(m.source) == "" {
			return nil, fmt.Errorf("%s template is empty", mode)
		}
		if _, err := set.New(mode).Parse(m.source); err != nil {
			return nil, fmt.Errorf("%s テンプレートの解析に失敗: %w", mode, err)
		}
	}
	return &ScriptPromptBuilder{set: set}, nil
}

// Build は mode のテンプレートを data で実行します。モードごとの必須入力が空ならエラーです。
func (b *ScriptPromptBuilder) Build(mode string, data TemplateData) (string, error) {
	m, ok := textModes[mode]
	if !ok {
		return "", fmt.Errorf("unknown prompt mode %q", mode)
	}
	if missing := m.required(data); missing != "" {
		return "", fmt.Errorf("%s is required for %s prompts", missing, mode)
	}

	var sb strings.Builder
	if err := b.set.ExecuteTemplate(&sb, mode, data); err != nil {
		return "", fmt.Errorf("%s プロンプトの生成に失敗: %w", mode, err)
	}
	return strings.TrimSpace(sb.String()), nil
}
