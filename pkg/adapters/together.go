package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shouni/go-previz-kit/pkg/domain"
	"github.com/shouni/go-previz-kit/pkg/generator"
	"github.com/shouni/go-previz-kit/pkg/provider"
)

const (
	// TogetherProviderName は利用者向けメッセージに出すプロバイダ名です。
	TogetherProviderName = "Together.AI"
	// DefaultTogetherBaseURL は Together.AI の OpenAI 互換エンドポイントです。
	DefaultTogetherBaseURL = "https://api.together.xyz"
	// DefaultTogetherModel は Together.AI の既定の画像モデルです。
	DefaultTogetherModel = "black-forest-labs/FLUX.1-schnell-Free"

	togetherImagesPath = "/v1/images/generations"
	togetherSteps      = 4
)

// TogetherAdapter は Together.AI の画像生成 API を呼び出します。
type TogetherAdapter struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewTogetherAdapter は TogetherAdapter を初期化します。httpClient が nil なら timeout 付きの既定クライアントを使います。
func NewTogetherAdapter(apiKey, model string, httpClient *http.Client, timeout time.Duration) *TogetherAdapter {
	if model == "" {
		model = DefaultTogetherModel
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &TogetherAdapter{
		baseURL:    DefaultTogetherBaseURL,
		apiKey:     strings.TrimSpace(apiKey),
		model:      model,
		httpClient: httpClient,
	}
}

func (a *TogetherAdapter) Name() string { return TogetherProviderName }

type togetherImageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Steps          int    `json:"steps"`
	N              int    `json:"n"`
	Seed           int64  `json:"seed"`
	ResponseFormat string `json:"response_format"`
}

type togetherImageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
}

type togetherErrorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code,omitempty"`
	} `json:"error"`
}

// Generate は1枚生成し、data URL または Together.AI が返した URL を返します。
func (a *TogetherAdapter) Generate(ctx context.Context, at generator.Attempt) (string, error) {
	if a.apiKey == "" {
		return "", provider.NewError(TogetherProviderName, provider.KindUnauthorized, "Together API key is not configured", nil)
	}
	if at.Kind == domain.MediaVideo {
		return "", provider.NewError(TogetherProviderName, provider.KindInvalidInput, "video generation is not supported by this provider", nil)
	}

	w, h := at.AspectRatio.Dimensions()
	body, err := json.Marshal(togetherImageRequest{
		Model:          a.model,
		Prompt:         at.Prompt,
		Width:          w,
		Height:         h,
		Steps:          togetherSteps,
		N:              1,
		Seed:           domain.GetSeedFromString(at.Seed),
		ResponseFormat: "b64_json",
	})
	if err != nil {
		return "", fmt.Errorf("together request encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+togetherImagesPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("together request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	report(at, 10)
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", provider.Wrap(TogetherProviderName, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", provider.Wrap(TogetherProviderName, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", parseTogetherError(resp.StatusCode, raw)
	}
	report(at, 90)

	var out togetherImageResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", provider.NewError(TogetherProviderName, provider.KindUnknown, "malformed response", err)
	}
	if len(out.Data) == 0 {
		return "", provider.NewError(TogetherProviderName, provider.KindUnknown, "no image in response", nil)
	}
	if b64 := out.Data[0].B64JSON; b64 != "" {
		return "data:image/jpeg;base64," + b64, nil
	}
	return out.Data[0].URL, nil
}

// parseTogetherError は OpenAI 互換のエラー本文からメッセージを取り出して分類します。
func parseTogetherError(status int, raw []byte) error {
	var env togetherErrorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && strings.TrimSpace(env.Error.Message) != "" {
		return provider.FromHTTPStatus(TogetherProviderName, status, []byte(env.Error.Message))
	}
	return provider.FromHTTPStatus(TogetherProviderName, status, raw)
}
