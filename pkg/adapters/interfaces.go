package adapters

import (
	"context"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-previz-kit/pkg/generator"
	"google.golang.org/genai"
)

// GeminiClient はアダプタが利用する Gemini クライアントの最小限の操作です。
type GeminiClient interface {
	GenerateContent(ctx context.Context, model string, prompt string) (*gemini.Response, error)
	GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error)
}

// ReferenceSource は参照画像をプロバイダに渡せる形に整えます。generator.ReferencePreparer が満たします。
type ReferenceSource interface {
	Prepare(ctx context.Context, refs []string) ([]generator.Reference, error)
}

// TextGenerator はプロンプトから平文の応答を得るライブプロバイダです。
type TextGenerator interface {
	Name() string
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// HTTPClient は URL からバイト列を取得します。httpkit のクライアントが満たします。
type HTTPClient interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}
