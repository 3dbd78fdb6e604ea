package llm

import (
	"context"
	"sync"
)

// MockLLMClient replays ResponseQueue in order, then Response.
type MockLLMClient struct {
	mu sync.Mutex

	Response      string
	ResponseQueue []string
	Err           error
	Prompts       []string
}

func (m *MockLLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}

type MockImageClient struct {
	mu sync.Mutex

	Image   Image
	Err     error
	Prompts []string
}

func (m *MockImageClient) GenerateImage(ctx context.Context, prompt string) (Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return Image{}, m.Err
	}
	return m.Image, nil
}
