package services

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/iblue/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type fakeEnqueuer struct {
	reqs []models.EmailNotificationRequest
	err  error
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, req models.EmailNotificationRequest) (*models.EmailJob, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.reqs = append(f.reqs, req)
	return &models.EmailJob{ID: uint(len(f.reqs))}, nil
}

func TestDirectDeliverer(t *testing.T) {
	sender := &fakeEmailSender{result: SendResult{Status: models.EmailSkippedOptOut}}
	status, err := NewDirectDeliverer(sender).Deliver(context.Background(), emailReq("u1"))
	require.NoError(t, err)
	assert.Equal(t, models.EmailSkippedOptOut, status)

	sender = &fakeEmailSender{err: errBoom}
	status, err = NewDirectDeliverer(sender).Deliver(context.Background(), emailReq("u1"))
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, models.EmailFailed, status)
}

func TestOutboxDeliverer(t *testing.T) {
	q := &fakeEnqueuer{}
	status, err := NewOutboxDeliverer(q).Deliver(context.Background(), emailReq("u1"))
	require.NoError(t, err)
	assert.Equal(t, models.EmailQueued, status)
	require.Len(t, q.reqs, 1)
	assert.Equal(t, "u1", q.reqs[0].RecipientID)

	q.err = errBoom
	status, err = NewOutboxDeliverer(q).Deliver(context.Background(), emailReq("u1"))
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, models.EmailFailed, status)
}

func TestEmailDispatcher_ProcessPending(t *testing.T) {
	jobs := &fakeJobs{pending: []models.EmailJob{
		{ID: 1, Payload: datatypes.NewJSONType(emailReq("u1"))},
		{ID: 2, Payload: datatypes.NewJSONType(emailReq("u2"))},
	}}
	sender := &recipientSender{fail: map[string]bool{"u2": true}}

	d := NewEmailDispatcher(jobs, sender, zap.NewNop()).WithBatchSize(10)
	d.processPending(context.Background())

	assert.Equal(t, []uint{1}, jobs.sent)
	assert.Equal(t, []uint{2}, jobs.failed)
	assert.Equal(t, []string{"u1", "u2"}, sender.seen)
}

func TestEmailDispatcher_RespectsBatchSize(t *testing.T) {
	jobs := &fakeJobs{pending: []models.EmailJob{
		{ID: 1, Payload: datatypes.NewJSONType(emailReq("u1"))},
		{ID: 2, Payload: datatypes.NewJSONType(emailReq("u2"))},
	}}
	d := NewEmailDispatcher(jobs, &recipientSender{}, zap.NewNop()).WithBatchSize(1)
	d.processPending(context.Background())

	assert.Equal(t, []uint{1}, jobs.sent)
}

type recipientSender struct {
	fail map[string]bool
	seen []string
}

func (s *recipientSender) Send(_ context.Context, req models.EmailNotificationRequest) (SendResult, error) {
	s.seen = append(s.seen, req.RecipientID)
	if s.fail[req.RecipientID] {
		return SendResult{Status: models.EmailFailed}, errBoom
	}
	return SendResult{Status: models.EmailSent}, nil
}

func TestEmailDispatcher_ConfiguredLimits(t *testing.T) {
	jobs := &fakeJobs{pending: []models.EmailJob{{ID: 7, Payload: datatypes.NewJSONType(emailReq("u1"))}}}
	d := NewEmailDispatcher(jobs, &recipientSender{fail: map[string]bool{"u1": true}}, zap.NewNop()).
		WithInterval(time.Second).
		WithMaxRetries(8).
		WithBatchSize(25)
	d.processPending(context.Background())

	assert.Equal(t, time.Second, d.interval)
	assert.Equal(t, []int{25}, jobs.limits)
	assert.Equal(t, []uint{7}, jobs.failed)
	assert.Equal(t, []int{8}, jobs.retries)
}
