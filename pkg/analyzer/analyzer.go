package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/shouni/go-previz-kit/pkg/domain"
	"github.com/shouni/go-previz-kit/pkg/fallback"
	"github.com/shouni/go-previz-kit/pkg/prompts"
	"github.com/shouni/go-previz-kit/pkg/provider"
)

var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*\\S)\\s*```")

// OfflineAnalysisNotice は脚本をオフラインで解析したときの通知です。
const OfflineAnalysisNotice = "AI analysis is unavailable. The script was broken down with the offline parser."

// Selector はライブ呼び出しの可否と失敗時の扱いを判断します。provider.Selector が満たします。
type Selector interface {
	ShouldPreferLive() bool
	IsFallbackEligible(err error) bool
	ClassifyError(ctx context.Context, err error, providerName string) string
	ClassifiedError(ctx context.Context, err error, providerName string) error
}

// TextGenerator はプロンプトから平文を得るライブプロバイダです。
type TextGenerator interface {
	Name() string
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// AnalysisResult は脚本解析の結果です。
type AnalysisResult struct {
	Analysis     domain.ScriptAnalysis
	FromFallback bool
	Notice       string
}

// TextResult はチャットや説明文生成の結果です。
type TextResult struct {
	Text         string
	FromFallback bool
	Notice       string
}

// Analyzer は脚本解析・演出相談・ムードボード説明を、ライブとオフラインの間で振り分けます。
type Analyzer struct {
	selector Selector
	text     TextGenerator
	prompts  prompts.TextPrompt
}

// New は Analyzer を初期化します。text が nil の場合は常にオフラインで応答します。
func New(sel Selector, text TextGenerator, pb prompts.TextPrompt) (*Analyzer, error) {
	if sel == nil {
		return nil, fmt.Errorf("selector is required")
	}
	if pb == nil {
		return nil, fmt.Errorf("prompt builder is required")
	}
	return &Analyzer{selector: sel, text: text, prompts: pb}, nil
}

func (a *Analyzer) live() bool {
	return a.text != nil && a.selector.ShouldPreferLive()
}

// AnalyzeScript は脚本を構造化します。ライブ解析が使えない、または置き換え可能な失敗をした場合は
// ヒューリスティック解析の結果を返します。それ以外の失敗は利用者向けメッセージのエラーになります。
func (a *Analyzer) AnalyzeScript(ctx context.Context, raw string) (AnalysisResult, error) {
	if !a.live() {
		slog.InfoContext(ctx, "Analyzing script offline")
		return AnalysisResult{Analysis: fallback.ParseScriptHeuristically(raw), FromFallback: true, Notice: OfflineAnalysisNotice}, nil
	}
	if strings.TrimSpace(raw) == "" {
		return AnalysisResult{Analysis: fallback.DefaultProject()}, nil
	}

	prompt, err := a.prompts.Build(prompts.ModeAnalyze, prompts.TemplateData{InputText: raw})
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("プロンプト生成に失敗: %w", err)
	}

	slog.InfoContext(ctx, "Analyzing script with live provider", "provider", a.text.Name())
	resp, err := a.text.GenerateText(ctx, prompt)
	if err == nil {
		var analysis domain.ScriptAnalysis
		analysis, err = ParseAnalysis(resp)
		if err == nil {
			return AnalysisResult{Analysis: analysis}, nil
		}
		err = provider.NewError(a.text.Name(), provider.KindUnknown, "the analysis response could not be read", err)
	}

	if a.selector.IsFallbackEligible(err) {
		slog.WarnContext(ctx, "Live analysis failed, using offline parser", "error", err)
		return AnalysisResult{
			Analysis:     fallback.ParseScriptHeuristically(raw),
			FromFallback: true,
			Notice:       fmt.Sprintf("%s is unavailable right now. The script was broken down with the offline parser.", a.text.Name()),
		}, nil
	}
	return AnalysisResult{}, a.selector.ClassifiedError(ctx, err, a.text.Name())
}

// ParseAnalysis は AI の応答から JSON を取り出し、ID を補正して検証します。
func ParseAnalysis(raw string) (domain.ScriptAnalysis, error) {
	raw = strings.TrimSpace(raw)
	var rawJSON string

	matches := jsonBlockRegex.FindStringSubmatch(raw)
	if len(matches) > 1 {
		rawJSON = matches[1]
	} else {
		firstBracket := strings.Index(raw, "{")
		lastBracket := strings.LastIndex(raw, "}")
		if firstBracket != -1 && lastBracket > firstBracket {
			rawJSON = raw[firstBracket : lastBracket+1]
		} else {
			rawJSON = raw
		}
	}

	var analysis domain.ScriptAnalysis
	if err := json.Unmarshal([]byte(rawJSON), &analysis); err != nil {
		return domain.ScriptAnalysis{}, fmt.Errorf("AIからの応答に含まれるJSONの解析に失敗しました (応答抜粋: %q): %w", truncateString(raw, 200), err)
	}
	if len(analysis.Scenes) == 0 {
		return domain.ScriptAnalysis{}, fmt.Errorf("AIからの応答にシーンが含まれていません")
	}

	analysis.NormalizeIDs()
	fillEmptySlices(&analysis)
	if err := analysis.Validate(); err != nil {
		return domain.ScriptAnalysis{}, err
	}
	return analysis, nil
}

func fillEmptySlices(a *domain.ScriptAnalysis) {
	for _, s := range []*[]string{&a.Props, &a.Styling, &a.SetDressing, &a.MakeupAndHair, &a.Sound} {
		if *s == nil {
			*s = []string{}
		}
	}
	if a.Characters == nil {
		a.Characters = []domain.Character{}
	}
	if a.Locations == nil {
		a.Locations = []domain.Location{}
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
