package services_test

import (
	"context"
	"time"

	"github.com/dentclinicai/dentclinicai-api/internal/audit"
	"github.com/dentclinicai/dentclinicai-api/internal/models"
	"github.com/dentclinicai/dentclinicai-api/internal/notify"
	"github.com/stretchr/testify/mock"
)

// MockContactNotifier is a mock implementation of ContactNotifier
type MockContactNotifier struct {
	mock.Mock
}

func (m *MockContactNotifier) NotifyContact(ctx context.Context, sub models.ContactSubmission, meta models.RequestMeta) (*notify.Delivery, error) {
	args := m.Called(ctx, sub, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notify.Delivery), args.Error(1)
}

// MockAuditSink is a mock implementation of audit.Sink
type MockAuditSink struct {
	mock.Mock
}

func (m *MockAuditSink) LogAccess(method, path string, status int, elapsed time.Duration, ip string) error {
	args := m.Called(method, path, status, elapsed, ip)
	return args.Error(0)
}

func (m *MockAuditSink) LogError(err error, ctx map[string]any) error {
	args := m.Called(err, ctx)
	return args.Error(0)
}

func (m *MockAuditSink) AppendRecord(file string, rec audit.Record) error {
	args := m.Called(file, rec)
	return args.Error(0)
}
