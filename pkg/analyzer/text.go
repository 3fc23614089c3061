package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-previz-kit/pkg/domain"
	"github.com/shouni/go-previz-kit/pkg/fallback"
	"github.com/shouni/go-previz-kit/pkg/prompts"
)

// OfflineTextNotice はテキスト応答をオフラインで返したときの通知です。
const OfflineTextNotice = "AI chat is unavailable. Showing an offline suggestion."

// AskDirector は演出の相談に答えます。project は nil でも構いません。
func (a *Analyzer) AskDirector(ctx context.Context, question string, project *domain.ScriptAnalysis) (TextResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return TextResult{}, fmt.Errorf("question is required")
	}

	data := prompts.TemplateData{InputText: question}
	if project != nil {
		data.Title = project.Title
		data.Logline = project.Logline
	}
	return a.generateText(ctx, prompts.ModeDirector, data, func() string {
		return fallback.OfflineDirectorReply(question)
	})
}

// DescribeMoodboardSection はムードボード区画の説明文を生成します。
func (a *Analyzer) DescribeMoodboardSection(ctx context.Context, section domain.MoodboardSection, project *domain.ScriptAnalysis) (TextResult, error) {
	if strings.TrimSpace(section.Name) == "" {
		return TextResult{}, fmt.Errorf("section name is required")
	}

	data := prompts.TemplateData{
		SectionName:  section.Name,
		SectionNotes: section.Notes,
		ImageCount:   len(section.Items),
	}
	if project != nil {
		data.Title = project.Title
	}
	return a.generateText(ctx, prompts.ModeMoodboard, data, func() string {
		return fallback.OfflineMoodboardDescription(section)
	})
}

func (a *Analyzer) generateText(ctx context.Context, mode string, data prompts.TemplateData, offline func() string) (TextResult, error) {
	if !a.live() {
		return TextResult{Text: offline(), FromFallback: true, Notice: OfflineTextNotice}, nil
	}

	prompt, err := a.prompts.Build(mode, data)
	if err != nil {
		return TextResult{}, fmt.Errorf("プロンプト生成に失敗: %w", err)
	}

	text, err := a.text.GenerateText(ctx, prompt)
	if err == nil {
		return TextResult{Text: text}, nil
	}
	if a.selector.IsFallbackEligible(err) {
		slog.WarnContext(ctx, "Live text generation failed, using offline reply", "mode", mode, "error", err)
		return TextResult{Text: offline(), FromFallback: true, Notice: OfflineTextNotice}, nil
	}
	return TextResult{}, a.selector.ClassifiedError(ctx, err, a.text.Name())
}
