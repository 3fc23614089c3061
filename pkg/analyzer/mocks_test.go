package analyzer

import (
	"context"
)

// --- Mocks ---

type mockCredentials struct{ key string }

func (m *mockCredentials) HasKey() bool { return m.key != "" }

func (m *mockCredentials) Invalidate(context.Context, string) error {
	m.key = ""
	return nil
}

type mockText struct {
	reply      string
	err        error
	calls      int
	lastPrompt string
}

func (m *mockText) Name() string { return "Gemini" }

func (m *mockText) GenerateText(_ context.Context, prompt string) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	return m.reply, m.err
}
