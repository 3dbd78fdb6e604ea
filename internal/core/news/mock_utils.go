package news

import "context"

type MockProvider struct {
	Feed    Feed
	Err     error
	Queries []Query
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Search(ctx context.Context, q Query) (Feed, error) {
	m.Queries = append(m.Queries, q)
	if m.Err != nil {
		return Feed{}, m.Err
	}
	return m.Feed, nil
}
