package services

import (
	"context"
	"testing"

	"github.com/anonto42/iblue/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type emailFixture struct {
	profiles *fakeProfiles
	logs     *fakeLogs
	presence *fakePresence
	emails   fakeEmails
	mailer   *fakeMailer
	lock     *fakeLock
}

func newEmailFixture() *emailFixture {
	return &emailFixture{
		profiles: &fakeProfiles{list: []models.Profile{
			profile("u1", true, ""),
			profile("optout", false, ""),
			profile("nomail", true, ""),
		}},
		logs:     &fakeLogs{},
		presence: &fakePresence{active: map[string]bool{}},
		emails:   fakeEmails{"u1": "u1@example.com", "optout": "o@example.com"},
		mailer:   &fakeMailer{},
		lock:     newFakeLock(),
	}
}

func (f *emailFixture) build() *EmailNotifier {
	return NewEmailNotifier(f.profiles, f.logs, f.presence, f.emails, f.mailer, f.lock, zap.NewNop())
}

func emailReq(recipient string) models.EmailNotificationRequest {
	return models.EmailNotificationRequest{
		RecipientID: recipient,
		Type:        models.NotificationReply,
		PostID:      "p1",
		Subject:     "Hello",
		HTMLBody:    "<p>hi</p>",
		TextBody:    "hi",
	}
}

func TestEmailNotifier_Sends(t *testing.T) {
	f := newEmailFixture()

	res, err := f.build().Send(context.Background(), emailReq("u1"))
	require.NoError(t, err)

	assert.Equal(t, models.EmailSent, res.Status)
	assert.Equal(t, "u1@example.com", res.Email)
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "u1@example.com", f.mailer.sent[0].To)
	assert.Equal(t, "Hello", f.mailer.sent[0].Subject)

	require.Len(t, f.logs.rows, 1)
	assert.Equal(t, models.EmailSent, f.logs.rows[0].Status)
	assert.Equal(t, "p1", f.logs.rows[0].Metadata.Data().PostID)
}

func TestEmailNotifier_OptOut(t *testing.T) {
	f := newEmailFixture()

	res, err := f.build().Send(context.Background(), emailReq("optout"))
	require.NoError(t, err)
	assert.Equal(t, models.EmailSkippedOptOut, res.Status)
	assert.Empty(t, f.mailer.sent)
}

func TestEmailNotifier_ActiveRecipient(t *testing.T) {
	f := newEmailFixture()
	f.presence.active["u1"] = true

	res, err := f.build().Send(context.Background(), emailReq("u1"))
	require.NoError(t, err)
	assert.Equal(t, models.EmailSkippedActiveUser, res.Status)
	assert.Empty(t, f.mailer.sent)
	assert.Equal(t, []models.EmailStatus{models.EmailSkippedActiveUser}, f.logs.statuses("u1"))
}

func TestEmailNotifier_SkipPresenceCheck(t *testing.T) {
	f := newEmailFixture()
	f.presence.active["u1"] = true
	req := emailReq("u1")
	req.SkipPresenceCheck = true

	res, err := f.build().Send(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.EmailSent, res.Status)
}

func TestEmailNotifier_AtMostOncePerPost(t *testing.T) {
	f := newEmailFixture()
	n := f.build()

	first, err := n.Send(context.Background(), emailReq("u1"))
	require.NoError(t, err)
	second, err := n.Send(context.Background(), emailReq("u1"))
	require.NoError(t, err)

	assert.Equal(t, models.EmailSent, first.Status)
	assert.Equal(t, models.EmailSkippedDuplicate, second.Status)
	assert.Len(t, f.mailer.sent, 1)
}

func TestEmailNotifier_LockHeldElsewhere(t *testing.T) {
	f := newEmailFixture()
	f.lock.held["email:p1:u1"] = true

	res, err := f.build().Send(context.Background(), emailReq("u1"))
	require.NoError(t, err)
	assert.Equal(t, models.EmailSkippedDuplicate, res.Status)
	assert.Empty(t, f.mailer.sent)
}

func TestEmailNotifier_NoEmail(t *testing.T) {
	f := newEmailFixture()

	res, err := f.build().Send(context.Background(), emailReq("nomail"))
	require.NoError(t, err)
	assert.Equal(t, models.EmailSkippedNoEmail, res.Status)
	assert.Contains(t, f.lock.released, "email:p1:nomail")
}

func TestEmailNotifier_MailerFailureReleasesLock(t *testing.T) {
	f := newEmailFixture()
	f.mailer.err = errBoom

	res, err := f.build().Send(context.Background(), emailReq("u1"))
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, models.EmailFailed, res.Status)
	assert.Equal(t, []models.EmailStatus{models.EmailFailed}, f.logs.statuses("u1"))
	assert.False(t, f.lock.held["email:p1:u1"])
}

func TestEmailNotifier_UnknownRecipient(t *testing.T) {
	f := newEmailFixture()

	_, err := f.build().Send(context.Background(), emailReq("ghost"))
	require.Error(t, err)
}

func TestEmailNotifier_NilLockAllows(t *testing.T) {
	f := newEmailFixture()
	n := NewEmailNotifier(f.profiles, f.logs, f.presence, f.emails, f.mailer, nil, zap.NewNop())

	res, err := n.Send(context.Background(), emailReq("u1"))
	require.NoError(t, err)
	assert.Equal(t, models.EmailSent, res.Status)
}
