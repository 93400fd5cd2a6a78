package mocks

import (
	"github.com/stretchr/testify/mock"
)

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(mime string, data []byte) (string, error) {
	args := m.Called(mime, data)
	return args.String(0), args.Error(1)
}
