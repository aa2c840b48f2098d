package notify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockEmailSender) Channel() string {
	return "mock"
}

var notifyCfg = Config{
	From:     "noreply@dentclinicai.com",
	FromName: "DentClinicAI",
	To:       "team@dentclinicai.com",
}

func newTestNotifier(sender EmailSender, outbox Outbox) *Notifier {
	n := NewNotifier(notifyCfg, sender, outbox)
	n.now = func() time.Time { return receivedAt }
	return n
}

func TestNotifyContact_UsesSender(t *testing.T) {
	sender := new(MockEmailSender)
	sender.On("Send", mock.Anything, mock.MatchedBy(func(msg EmailMessage) bool {
		return msg.To == "team@dentclinicai.com" &&
			msg.From == "noreply@dentclinicai.com" &&
			msg.Subject == "New Contact Form Submission - Bright Smiles" &&
			msg.Body == ContactBody(testSubmission(), testMeta()) &&
			msg.Date.Equal(receivedAt)
	})).Return(nil)

	outboxDir := t.TempDir()
	n := newTestNotifier(sender, NewFileOutbox(outboxDir))

	delivery, err := n.NotifyContact(context.Background(), testSubmission(), testMeta())
	require.NoError(t, err)

	assert.Equal(t, "mock", delivery.Channel)
	assert.Empty(t, delivery.Location)
	sender.AssertExpectations(t)

	entries, err := os.ReadDir(outboxDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNotifyContact_SenderErrorIsReturned(t *testing.T) {
	sender := new(MockEmailSender)
	sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("relay down"))

	delivery, err := newTestNotifier(sender, nil).NotifyContact(context.Background(), testSubmission(), testMeta())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay down")
	assert.Equal(t, "mock", delivery.Channel)
}

func TestNotifyContact_NoTransportWritesOutbox(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "maildev.outbox")
	n := newTestNotifier(nil, NewFileOutbox(dir))

	assert.Equal(t, ChannelOutbox, n.Channel())

	delivery, err := n.NotifyContact(context.Background(), testSubmission(), testMeta())
	require.NoError(t, err)
	assert.Equal(t, ChannelOutbox, delivery.Channel)

	data, err := os.ReadFile(delivery.Location)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Subject: New Contact Form Submission - Bright Smiles\nFrom: noreply@dentclinicai.com\nTo: team@dentclinicai.com\nDate: Fri, 14 Mar 2025 09:26:53 GMT\n\n")
	assert.Contains(t, string(data), "Source IP: 203.0.113.9")
}

func TestNotifyContact_NoTransportNoOutbox(t *testing.T) {
	_, err := newTestNotifier(nil, nil).NotifyContact(context.Background(), testSubmission(), testMeta())
	assert.Error(t, err)
}
