package core

import (
	"context"
	"errors"
	"sync"

	"github.com/agenthands/cartoonist/internal/core/location"
	"github.com/agenthands/cartoonist/internal/core/model"
	"github.com/agenthands/cartoonist/internal/core/ratelimit"
	"github.com/agenthands/cartoonist/internal/store"
)

type MockLimiter struct {
	Decision ratelimit.Decision
	Callers  []string
}

func (m *MockLimiter) Admit(ctx context.Context, callerID string) ratelimit.Decision {
	m.Callers = append(m.Callers, callerID)
	return m.Decision
}

type MockStore struct {
	mu sync.Mutex

	Saved []model.GeneratedArtifact
	Ref   string
	Err   error
}

func (m *MockStore) Save(ctx context.Context, art *model.GeneratedArtifact) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	art.ID = m.Ref
	m.Saved = append(m.Saved, *art)
	return m.Ref, nil
}

func (m *MockStore) Load(ctx context.Context, ref string) (*store.Record, error) {
	return nil, store.ErrNotFound
}

// MockResolver records whether the pipeline consulted it.
type MockResolver struct {
	Location model.Location
	Err      error
	Requests int
}

func (m *MockResolver) Resolve(ctx context.Context, req location.Request) (model.Location, error) {
	m.Requests++
	if m.Err != nil {
		return model.Location{}, m.Err
	}
	return m.Location, nil
}

var errStoreDown = errors.New("disk full")
