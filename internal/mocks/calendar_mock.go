package mocks

import (
	"context"

	"github.com/omriShneor/meeting_assistant/internal/gcal"
	"github.com/stretchr/testify/mock"
)

// MockCalendar is a mock implementation of meetings.Calendar
type MockCalendar struct {
	mock.Mock
}

func (m *MockCalendar) IsAuthenticated() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockCalendar) CreateMeeting(ctx context.Context, input gcal.MeetingInput) (*gcal.CreatedMeeting, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gcal.CreatedMeeting), args.Error(1)
}
