package storage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/JamesPrial/text2graph/pkg/mcp"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) CreateEntities(ctx context.Context, entities []mcp.Entity) ([]mcp.Entity, error) {
	args := m.Called(ctx, entities)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mcp.Entity), args.Error(1)
}

func (m *MockBackend) CreateRelations(ctx context.Context, relations []mcp.Relation) ([]mcp.Relation, error) {
	args := m.Called(ctx, relations)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mcp.Relation), args.Error(1)
}

func (m *MockBackend) GetEntity(ctx context.Context, id string) (*mcp.Entity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mcp.Entity), args.Error(1)
}

func (m *MockBackend) SearchEntities(ctx context.Context, query string) ([]mcp.Entity, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mcp.Entity), args.Error(1)
}

func (m *MockBackend) GetStatistics(ctx context.Context) (*mcp.Statistics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mcp.Statistics), args.Error(1)
}

func (m *MockBackend) Close() error {
	args := m.Called()
	return args.Error(0)
}
