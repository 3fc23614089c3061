package workflow

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/go-previz-kit/pkg/adapters"
	"github.com/shouni/go-previz-kit/pkg/generator"
)

// --- Mocks ---

type fakeGeminiClient struct {
	key  string
	text string
}

func (f *fakeGeminiClient) GenerateContent(_ context.Context, _ string, _ string) (*gemini.Response, error) {
	return &gemini.Response{
		RawResponse: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}},
			}},
		},
	}, nil
}

func (f *fakeGeminiClient) GenerateWithParts(_ context.Context, _ string, _ []*genai.Part, _ gemini.GenerateOptions) (*gemini.Response, error) {
	return &gemini.Response{RawResponse: &genai.GenerateContentResponse{}}, nil
}

type fakeFactory struct {
	mu   sync.Mutex
	keys []string
	text string
}

func (f *fakeFactory) build(_ context.Context, apiKey string) (adapters.GeminiClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, apiKey)
	return &fakeGeminiClient{key: apiKey, text: f.text}, nil
}

type stubProvider struct {
	mu   sync.Mutex
	url  string
	err  error
	hook func()
	got  []generator.Attempt
}

func (s *stubProvider) Name() string { return "Stub" }

func (s *stubProvider) Generate(_ context.Context, at generator.Attempt) (string, error) {
	s.mu.Lock()
	s.got = append(s.got, at)
	hook := s.hook
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type stubFetcher struct {
	mu   sync.Mutex
	data []byte
	n    int
}

func (f *stubFetcher) FetchBytes(_ context.Context, _ string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	return f.data, nil
}

func (f *stubFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.n
}

type stubTransport struct {
	mu     sync.Mutex
	status int
	body   string
	n      int
}

func (s *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	s.n++
	s.mu.Unlock()
	return &http.Response{
		StatusCode: s.status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(s.body)),
		Request:    req,
	}, nil
}

func (s *stubTransport) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}
