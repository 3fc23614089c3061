package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/go-previz-kit/pkg/domain"
	"github.com/shouni/go-previz-kit/pkg/generator"
	"github.com/shouni/go-previz-kit/pkg/provider"
)

// GeminiProviderName は利用者向けメッセージに出すプロバイダ名です。
const GeminiProviderName = "Gemini"

// GeminiImageAdapter は Gemini の画像モデルで静止画を1枚生成します。
type GeminiImageAdapter struct {
	client     GeminiClient
	references ReferenceSource
	model      string
	style      string
}

// NewGeminiImageAdapter は GeminiImageAdapter を初期化します。references は nil でも構いません。
func NewGeminiImageAdapter(client GeminiClient, references ReferenceSource, model, style string) (*GeminiImageAdapter, error) {
	if client == nil {
		return nil, fmt.Errorf("gemini client is required")
	}
	if model == "" {
		return nil, fmt.Errorf("image model is required")
	}
	return &GeminiImageAdapter{
		client:     client,
		references: references,
		model:      model,
		style:      style,
	}, nil
}

func (a *GeminiImageAdapter) Name() string { return GeminiProviderName }

// Generate は参照画像とプロンプトを1リクエストにまとめ、結果を data URL で返します。
func (a *GeminiImageAdapter) Generate(ctx context.Context, at generator.Attempt) (string, error) {
	if at.Kind == domain.MediaVideo {
		return "", provider.NewError(GeminiProviderName, provider.KindInvalidInput, "video generation is not supported by this provider", nil)
	}

	var parts []*genai.Part
	if len(at.References) > 0 && a.references != nil {
		refs, err := a.references.Prepare(ctx, at.References)
		if err != nil {
			return "", provider.NewError(GeminiProviderName, provider.KindInvalidInput, "reference image could not be read", err)
		}
		for _, r := range refs {
			parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: r.MimeType, Data: r.Data}})
		}
	}
	parts = append(parts, &genai.Part{Text: a.buildPrompt(at.Prompt)})
	report(at, 20)

	startTime := time.Now()
	resp, err := a.client.GenerateWithParts(ctx, a.model, parts, gemini.GenerateOptions{
		AspectRatio: string(at.AspectRatio),
	})
	if err != nil {
		return "", provider.Wrap(GeminiProviderName, err)
	}
	report(at, 90)

	img, err := parseImageResponse(resp, domain.GetSeedFromString(at.Seed))
	if err != nil {
		return "", err
	}
	slog.Debug("Gemini image generated", "attempt", at.Index+1, "mime", img.MimeType, "duration", time.Since(startTime).Round(time.Millisecond))
	return generator.EncodeDataURL(img.MimeType, img.Data), nil
}

func (a *GeminiImageAdapter) buildPrompt(prompt string) string {
	if a.style == "" {
		return prompt
	}
	return prompt + "\n\nStyle: " + a.style
}

// parseImageResponse は最初の候補から画像を取り出します。安全フィルターによる停止は KindSafety になります。
func parseImageResponse(resp *gemini.Response, seed int64) (*imagedom.ImageResponse, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return nil, provider.NewError(GeminiProviderName, provider.KindUnknown, "no candidates in response", nil)
	}
	candidate := resp.RawResponse.Candidates[0]

	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &imagedom.ImageResponse{
					Data:     part.InlineData.Data,
					MimeType: part.InlineData.MIMEType,
					UsedSeed: seed,
				}, nil
			}
		}
	}

	return nil, finishReasonError(candidate.FinishReason)
}

func finishReasonError(reason genai.FinishReason) error {
	switch reason {
	case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent, genai.FinishReasonBlocklist, genai.FinishReasonImageSafety:
		return provider.NewError(GeminiProviderName, provider.KindSafety, fmt.Sprintf("Generation blocked for safety. Reason: %s.", reason), nil)
	case genai.FinishReasonUnspecified, genai.FinishReasonStop:
		return provider.NewError(GeminiProviderName, provider.KindUnknown, "no image data in response", nil)
	}
	return provider.NewError(GeminiProviderName, provider.KindUnknown, fmt.Sprintf("generation ended unexpectedly (FinishReason: %s)", reason), nil)
}

// GeminiTextAdapter は Gemini のテキストモデルで平文を生成します。
type GeminiTextAdapter struct {
	client GeminiClient
	model  string
}

// NewGeminiTextAdapter は GeminiTextAdapter を初期化します。
func NewGeminiTextAdapter(client GeminiClient, model string) (*GeminiTextAdapter, error) {
	if client == nil {
		return nil, fmt.Errorf("gemini client is required")
	}
	if model == "" {
		return nil, fmt.Errorf("text model is required")
	}
	return &GeminiTextAdapter{client: client, model: model}, nil
}

func (a *GeminiTextAdapter) Name() string { return GeminiProviderName }

// GenerateText はプロンプトを送り、最初の候補のテキストを連結して返します。
func (a *GeminiTextAdapter) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.GenerateContent(ctx, a.model, prompt)
	if err != nil {
		return "", provider.Wrap(GeminiProviderName, err)
	}
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return "", provider.NewError(GeminiProviderName, provider.KindUnknown, "no candidates in response", nil)
	}

	candidate := resp.RawResponse.Candidates[0]
	var sb strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part != nil {
				sb.WriteString(part.Text)
			}
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", finishReasonError(candidate.FinishReason)
	}
	return text, nil
}

func report(at generator.Attempt, percent int) {
	if at.Progress != nil {
		at.Progress(percent)
	}
}
