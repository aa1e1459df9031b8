package mocks

import (
	"context"

	"github.com/omriShneor/meeting_assistant/internal/notify"
	"github.com/stretchr/testify/mock"
)

// MockMailer is a mock implementation of notify.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg *notify.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMailer) IsConfigured() bool {
	args := m.Called()
	return args.Bool(0)
}
