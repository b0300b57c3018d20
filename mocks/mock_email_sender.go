package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendProcessingFailureAlert(ctx context.Context, toEmail, documentID, errorMessage string) error {
	args := m.Called(ctx, toEmail, documentID, errorMessage)
	return args.Error(0)
}
