package mocks

import (
	"github.com/stretchr/testify/mock"
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) PublishSession(payload any) error {
	args := m.Called(payload)
	return args.Error(0)
}
