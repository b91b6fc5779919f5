package parser

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockParser struct {
	mock.Mock
}

func (m *MockParser) Parse(ctx context.Context, text string) (*Document, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Document), args.Error(1)
}

func (m *MockParser) Explain(label string) string {
	args := m.Called(label)
	return args.String(0)
}

func (m *MockParser) Available(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}
