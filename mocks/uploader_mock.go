package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	args := m.Called(ctx, key, contentType, body)
	return args.Error(0)
}
