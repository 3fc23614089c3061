package generator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-previz-kit/pkg/domain"
	"github.com/shouni/go-previz-kit/pkg/provider"
)

func newTestOrchestrator(t *testing.T, key string, forceOffline bool, p MediaProvider, cfg Config) *Orchestrator {
	t.Helper()
	sel, err := provider.NewSelector(&mockCredentials{key: key}, forceOffline)
	require.NoError(t, err)
	o, err := NewOrchestrator(sel, p, mockFallback{}, cfg)
	require.NoError(t, err)
	return o
}

func baseRequest(count int) domain.GenerationRequest {
	return domain.GenerationRequest{
		Prompt:      "a lighthouse at dusk",
		Seed:        "frame-1",
		AspectRatio: domain.AspectWide,
		Count:       count,
	}
}

func TestNewOrchestrator_Validation(t *testing.T) {
	sel, err := provider.NewSelector(&mockCredentials{}, false)
	require.NoError(t, err)

	_, err = NewOrchestrator(nil, &mockProvider{}, mockFallback{}, DefaultConfig())
	assert.Error(t, err)
	_, err = NewOrchestrator(sel, nil, mockFallback{}, DefaultConfig())
	assert.Error(t, err)
	_, err = NewOrchestrator(sel, &mockProvider{}, nil, DefaultConfig())
	assert.Error(t, err)

	o, err := NewOrchestrator(sel, &mockProvider{}, mockFallback{}, Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxVariants, o.maxVariants)
}

func TestGenerateVariants_PartialFailure(t *testing.T) {
	p := &mockProvider{errs: map[int]error{
		1: provider.NewError("mock", provider.KindSafety, "Generation blocked for safety. Reason: SAFETY.", nil),
	}}
	o := newTestOrchestrator(t, "key", false, p, DefaultConfig())

	res, err := o.GenerateVariants(context.Background(), baseRequest(3), nil)
	require.NoError(t, err)
	require.Len(t, res.Results, 3)

	assert.NotEmpty(t, res.Results[0].URL)
	assert.False(t, res.Results[0].FromFallback)
	assert.Empty(t, res.Results[1].URL)
	assert.NotEmpty(t, res.Results[1].Error)
	assert.True(t, res.Results[1].Failed())
	assert.Contains(t, res.Results[1].Error, "adjust your prompt")
	assert.NotEmpty(t, res.Results[2].URL)
	assert.False(t, res.WasAdjusted)
	assert.EqualValues(t, 3, p.calls.Load())
}

func TestGenerateVariants_ResultsAttributedByIndex(t *testing.T) {
	p := &mockProvider{}
	o := newTestOrchestrator(t, "key", false, p, DefaultConfig())

	res, err := o.GenerateVariants(context.Background(), baseRequest(4), nil)
	require.NoError(t, err)
	for i, r := range res.Results {
		assert.True(t, strings.HasSuffix(r.URL, AttemptSeed("frame-1", i)+".png"), r.URL)
	}
}

func TestGenerateVariants_ForcedOffline(t *testing.T) {
	p := &mockProvider{}
	o := newTestOrchestrator(t, "key", true, p, DefaultConfig())

	res, err := o.GenerateVariants(context.Background(), baseRequest(3), nil)
	require.NoError(t, err)
	require.Len(t, res.Results, 3)
	for _, r := range res.Results {
		assert.True(t, r.FromFallback)
		assert.NotEmpty(t, r.URL)
		assert.Empty(t, r.Error)
		assert.Equal(t, OfflineNotice, r.Notice)
	}
	assert.EqualValues(t, 0, p.calls.Load(), "オフライン時はプロバイダを呼ばないこと")
}

func TestGenerateVariants_MissingCredentialUsesFallback(t *testing.T) {
	o := newTestOrchestrator(t, "", false, &mockProvider{}, DefaultConfig())
	res, err := o.GenerateVariants(context.Background(), baseRequest(1), nil)
	require.NoError(t, err)
	assert.True(t, res.Results[0].FromFallback)
}

func TestGenerateVariants_EligibleFailureFallsBack(t *testing.T) {
	p := &mockProvider{errs: map[int]error{
		0: errors.New("Error: 429 Too Many Requests"),
	}}
	o := newTestOrchestrator(t, "key", false, p, DefaultConfig())

	res, err := o.GenerateVariants(context.Background(), baseRequest(2), nil)
	require.NoError(t, err)

	assert.True(t, res.Results[0].FromFallback)
	assert.Equal(t, "stock://image/landscape/"+AttemptSeed("frame-1", 0), res.Results[0].URL)
	assert.Contains(t, res.Results[0].Notice, "rate_limit")
	assert.False(t, res.Results[1].FromFallback)
}

func TestGenerateVariants_FallbackSeedIsStable(t *testing.T) {
	p := &mockProvider{errs: map[int]error{0: errors.New("quota exceeded")}}
	o := newTestOrchestrator(t, "key", false, p, DefaultConfig())

	first, err := o.GenerateVariants(context.Background(), baseRequest(1), nil)
	require.NoError(t, err)
	second, err := o.GenerateVariants(context.Background(), baseRequest(1), nil)
	require.NoError(t, err)
	assert.Equal(t, first.Results[0].URL, second.Results[0].URL)
}

func TestGenerateVariants_EmptyURLIsUnknownFailure(t *testing.T) {
	o := newTestOrchestrator(t, "key", false, emptyProvider{}, DefaultConfig())
	res, err := o.GenerateVariants(context.Background(), baseRequest(1), nil)
	require.NoError(t, err)
	assert.True(t, res.Results[0].Failed())
	assert.Equal(t, "provider returned no media", res.Results[0].Error)
}

type emptyProvider struct{}

func (emptyProvider) Name() string { return "empty" }

func (emptyProvider) Generate(context.Context, Attempt) (string, error) { return "", nil }

func TestGenerateVariants_Validation(t *testing.T) {
	p := &mockProvider{}
	o := newTestOrchestrator(t, "key", false, p, DefaultConfig())

	tests := []struct {
		name string
		mod  func(*domain.GenerationRequest)
	}{
		{"empty prompt", func(r *domain.GenerationRequest) { r.Prompt = "  " }},
		{"zero count", func(r *domain.GenerationRequest) { r.Count = 0 }},
		{"bad aspect", func(r *domain.GenerationRequest) { r.AspectRatio = "2:1" }},
		{"bad kind", func(r *domain.GenerationRequest) { r.Kind = "audio" }},
		{"bad reference scheme", func(r *domain.GenerationRequest) { r.ReferenceImages = []string{"ftp://x/y.png"} }},
		{"malformed data url", func(r *domain.GenerationRequest) { r.ReferenceImages = []string{"data:image/png;base64,@@@"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest(2)
			tt.mod(&req)
			res, err := o.GenerateVariants(context.Background(), req, nil)
			assert.Error(t, err)
			assert.Nil(t, res.Results)
		})
	}
	assert.EqualValues(t, 0, p.calls.Load(), "検証エラー時はネットワーク処理を始めないこと")
}

func TestGenerateVariants_Adjusted(t *testing.T) {
	p := &mockProvider{}
	o := newTestOrchestrator(t, "key", false, p, Config{MaxVariants: 2})

	res, err := o.GenerateVariants(context.Background(), baseRequest(5), nil)
	require.NoError(t, err)
	assert.Len(t, res.Results, 2)
	assert.True(t, res.WasAdjusted)

	req := baseRequest(1)
	req.ReferenceImages = []string{"https://a.example/1.png", "https://a.example/1.png"}
	res, err = o.GenerateVariants(context.Background(), req, nil)
	require.NoError(t, err)
	assert.True(t, res.WasAdjusted)
	require.NotEmpty(t, p.attempts)
	assert.Equal(t, []string{"https://a.example/1.png"}, p.attempts[len(p.attempts)-1].References)
}

func TestGenerateWithMoodboard(t *testing.T) {
	p := &mockProvider{}
	o := newTestOrchestrator(t, "key", false, p, DefaultConfig())

	mb := &domain.Moodboard{
		Templates: []domain.MoodboardItem{{URL: "https://m.example/t1.png"}, {URL: "https://u.example/1.png"}},
		Sections: []domain.MoodboardSection{{Name: "Color", Items: []domain.MoodboardItem{
			{URL: "https://m.example/s1.png"}, {URL: "https://m.example/s2.png"}, {URL: "https://m.example/s3.png"},
		}}},
	}
	req := baseRequest(1)
	req.ReferenceImages = []string{"https://u.example/1.png"}

	res, err := o.GenerateWithMoodboard(context.Background(), req, mb, nil)
	require.NoError(t, err)
	assert.True(t, res.WasAdjusted)
	require.Len(t, p.attempts, 1)
	assert.Equal(t, []string{
		"https://u.example/1.png",
		"https://m.example/t1.png",
		"https://m.example/s1.png",
		"https://m.example/s2.png",
		"https://m.example/s3.png",
	}, p.attempts[0].References)

	res, err = o.GenerateWithMoodboard(context.Background(), baseRequest(1), nil, nil)
	require.NoError(t, err)
	assert.False(t, res.WasAdjusted)
}

func TestGenerateVariants_Progress(t *testing.T) {
	p := &mockProvider{
		progress: []int{10, 50, 30, 120},
		errs:     map[int]error{1: provider.NewError("mock", provider.KindSafety, "blocked", nil)},
	}
	o := newTestOrchestrator(t, "key", false, p, Config{Concurrency: 1})

	var mu sync.Mutex
	got := map[int][]int{}
	res, err := o.GenerateVariants(context.Background(), baseRequest(2), func(index, percent int) {
		mu.Lock()
		defer mu.Unlock()
		got[index] = append(got[index], percent)
	})
	require.NoError(t, err)
	require.Len(t, res.Results, 2)

	for i := 0; i < 2; i++ {
		updates := got[i]
		require.NotEmpty(t, updates)
		assert.Equal(t, 100, updates[len(updates)-1], "最後の通知は成否にかかわらず 100")
		for j := 1; j < len(updates); j++ {
			assert.GreaterOrEqual(t, updates[j], updates[j-1])
		}
		assert.Equal(t, []int{0, 10, 50, 99, 100}, updates)
	}
}

func TestGenerateVariants_ProgressOffline(t *testing.T) {
	o := newTestOrchestrator(t, "key", true, &mockProvider{}, DefaultConfig())

	var mu sync.Mutex
	got := map[int][]int{}
	_, err := o.GenerateVariants(context.Background(), baseRequest(3), func(index, percent int) {
		mu.Lock()
		defer mu.Unlock()
		got[index] = append(got[index], percent)
	})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.Equal(t, []int{100}, got[i])
	}
}

func TestGenerateVariants_DefaultsKindAndSeed(t *testing.T) {
	p := &mockProvider{}
	o := newTestOrchestrator(t, "key", false, p, DefaultConfig())

	req := baseRequest(1)
	req.Seed = ""
	req.AspectRatio = ""
	_, err := o.GenerateVariants(context.Background(), req, nil)
	require.NoError(t, err)
	require.Len(t, p.attempts, 1)
	assert.Equal(t, domain.MediaImage, p.attempts[0].Kind)
	assert.Equal(t, domain.DefaultAspect, p.attempts[0].AspectRatio)
	assert.Equal(t, AttemptSeed(req.Prompt, 0), p.attempts[0].Seed)
}
