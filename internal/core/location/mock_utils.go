package location

import (
	"context"
	"sync"

	"github.com/agenthands/cartoonist/internal/core/model"
)

type MockGeocoder struct {
	mu sync.Mutex

	Coords     *model.Coordinates
	ForwardErr error
	Address    *RawAddress
	ReverseErr error

	ForwardCalls []string
	ReverseCalls [][2]float64
}

func (m *MockGeocoder) Forward(ctx context.Context, text string) (*model.Coordinates, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ForwardCalls = append(m.ForwardCalls, text)
	if m.ForwardErr != nil {
		return nil, m.ForwardErr
	}
	return m.Coords, nil
}

func (m *MockGeocoder) Reverse(ctx context.Context, lat, lon float64) (*RawAddress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReverseCalls = append(m.ReverseCalls, [2]float64{lat, lon})
	if m.ReverseErr != nil {
		return nil, m.ReverseErr
	}
	return m.Address, nil
}

type MockNetworkLocator struct {
	Fix   *NetworkFix
	Err   error
	Calls []string
}

func (m *MockNetworkLocator) Locate(ctx context.Context, ip string) (*NetworkFix, error) {
	m.Calls = append(m.Calls, ip)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Fix, nil
}
