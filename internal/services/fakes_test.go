package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/anonto42/iblue/backend/internal/models"
	"github.com/anonto42/iblue/backend/internal/repositories"
	"github.com/anonto42/iblue/backend/pkg/firebase"
	"github.com/anonto42/iblue/backend/pkg/mailer"
	"gorm.io/datatypes"
)

func profile(id string, optIn bool, langs string) models.Profile {
	p := models.Profile{ID: id, DisplayName: "user-" + id, EmailNotificationsEnabled: optIn}
	if langs != "" {
		p.ProgrammingLanguages = datatypes.JSON(langs)
	}
	return p
}

type fakeProfiles struct {
	list []models.Profile
	err  error
}

func (f *fakeProfiles) GetProfileByID(_ context.Context, id string) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.list {
		if f.list[i].ID == id {
			p := f.list[i]
			return &p, nil
		}
	}
	return nil, repositories.ErrProfileNotFound
}

func (f *fakeProfiles) GetEmailOptedIn(_ context.Context, excludeID string) ([]models.Profile, error) {
	var out []models.Profile
	for _, p := range f.list {
		if p.EmailNotificationsEnabled && p.ID != excludeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProfiles) RandomProfiles(_ context.Context, n int, excludeIDs ...string) ([]models.Profile, error) {
	skip := map[string]bool{}
	for _, id := range excludeIDs {
		skip[id] = true
	}
	var out []models.Profile
	for _, p := range f.list {
		if !skip[p.ID] && len(out) < n {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakePosts struct {
	posts      map[string]*models.Post
	created    []*models.Post
	commentInc int
}

func newFakePosts(posts ...*models.Post) *fakePosts {
	f := &fakePosts{posts: map[string]*models.Post{}}
	for _, p := range posts {
		f.posts[p.ID] = p
	}
	return f
}

func (f *fakePosts) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	return p, nil
}

func (f *fakePosts) CreatePost(_ context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = "generated-post"
	}
	f.posts[post.ID] = post
	f.created = append(f.created, post)
	return nil
}

func (f *fakePosts) IncrementCommentsCount(_ context.Context, _ string) error {
	f.commentInc++
	return nil
}

type fakeLogs struct {
	rows []models.NotificationLog
}

func (f *fakeLogs) Insert(_ context.Context, log *models.NotificationLog) error {
	f.rows = append(f.rows, *log)
	return nil
}

func (f *fakeLogs) SentRecipientsForPost(_ context.Context, postID string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, r := range f.rows {
		if r.Status == models.EmailSent && r.Metadata.Data().PostID == postID {
			out[r.RecipientID] = true
		}
	}
	return out, nil
}

func (f *fakeLogs) HasSent(ctx context.Context, recipientID, postID string) (bool, error) {
	sent, _ := f.SentRecipientsForPost(ctx, postID)
	return sent[recipientID], nil
}

func (f *fakeLogs) statuses(recipientID string) []models.EmailStatus {
	var out []models.EmailStatus
	for _, r := range f.rows {
		if r.RecipientID == recipientID {
			out = append(out, r.Status)
		}
	}
	return out
}

func sentLog(recipientID, postID string) models.NotificationLog {
	return models.NotificationLog{
		RecipientID: recipientID,
		Status:      models.EmailSent,
		Metadata:    datatypes.NewJSONType(models.NotificationLogMetadata{PostID: postID}),
	}
}

type fakePresence struct {
	active map[string]bool
	err    error
}

func (f *fakePresence) IsActive(_ context.Context, userID string) (bool, error) {
	return f.active[userID], f.err
}

func (f *fakePresence) ActiveSet(_ context.Context, userIDs []string) (map[string]bool, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]bool{}
	for _, id := range userIDs {
		if f.active[id] {
			out[id] = true
		}
	}
	return out, nil
}

type fakeEmails map[string]string

func (f fakeEmails) ResolveEmail(_ context.Context, uid string) (string, error) {
	if e, ok := f[uid]; ok {
		return e, nil
	}
	return "", firebase.ErrNoEmail
}

type fakeNotifier struct {
	inputs []NotifyInput
	err    error
}

func (f *fakeNotifier) Notify(_ context.Context, in NotifyInput) (*models.Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, in)
	return &models.Notification{RecipientID: in.RecipientID, Type: in.Type}, nil
}

func (f *fakeNotifier) recipients() []string {
	var out []string
	for _, in := range f.inputs {
		out = append(out, in.RecipientID)
	}
	return out
}

type fakeDeliverer struct {
	reqs   []models.EmailNotificationRequest
	status models.EmailStatus
	errFor map[string]error
}

func (f *fakeDeliverer) Deliver(_ context.Context, req models.EmailNotificationRequest) (models.EmailStatus, error) {
	if err := f.errFor[req.RecipientID]; err != nil {
		return models.EmailFailed, err
	}
	f.reqs = append(f.reqs, req)
	if f.status == "" {
		return models.EmailSent, nil
	}
	return f.status, nil
}

type fakeMailer struct {
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "<id@test>", nil
}

type fakeLock struct {
	mu       sync.Mutex
	held     map[string]bool
	released []string
}

func newFakeLock() *fakeLock { return &fakeLock{held: map[string]bool{}} }

func (f *fakeLock) AcquireOnce(_ context.Context, scope, id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := scope + ":" + id
	if f.held[k] {
		return false
	}
	f.held[k] = true
	return true
}

func (f *fakeLock) Release(_ context.Context, scope, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := scope + ":" + id
	delete(f.held, k)
	f.released = append(f.released, k)
}

type fakeLLM struct {
	text  string
	err   error
	calls int
}

func (f *fakeLLM) Complete(_ context.Context, _, _ string, _ int) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeComments struct {
	created []models.Comment
}

func (f *fakeComments) CreateComment(_ context.Context, c *models.Comment) error {
	c.ID = uint(len(f.created) + 1)
	f.created = append(f.created, *c)
	return nil
}

func (f *fakeComments) GetCommentByID(_ context.Context, id uint) (*models.Comment, error) {
	for i := range f.created {
		if f.created[i].ID == id {
			c := f.created[i]
			return &c, nil
		}
	}
	return nil, repositories.ErrCommentNotFound
}

type fakeLanguageFanout struct {
	reqs []LanguageNotifyRequest
}

func (f *fakeLanguageFanout) Notify(_ context.Context, req LanguageNotifyRequest) (*LanguageNotifySummary, error) {
	f.reqs = append(f.reqs, req)
	return &LanguageNotifySummary{Success: true, PostsProcessed: 1}, nil
}

type fakeCommentFanout struct {
	reqs []CommentNotifyRequest
}

func (f *fakeCommentFanout) Notify(_ context.Context, req CommentNotifyRequest) (*CommentNotifyResult, error) {
	f.reqs = append(f.reqs, req)
	return &CommentNotifyResult{}, nil
}

type fakeEmailSender struct {
	reqs   []models.EmailNotificationRequest
	result SendResult
	err    error
}

func (f *fakeEmailSender) Send(_ context.Context, req models.EmailNotificationRequest) (SendResult, error) {
	f.reqs = append(f.reqs, req)
	return f.result, f.err
}

type fakeJobs struct {
	pending []models.EmailJob
	sent    []uint
	failed  []uint
	limits  []int
	retries []int
}

func (f *fakeJobs) GetPending(_ context.Context, _ time.Time, limit int) ([]models.EmailJob, error) {
	f.limits = append(f.limits, limit)
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeJobs) MarkSent(_ context.Context, id uint) error {
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeJobs) MarkFailed(_ context.Context, id uint, _ error, maxRetries int, _ time.Time) error {
	f.failed = append(f.failed, id)
	f.retries = append(f.retries, maxRetries)
	return nil
}

var errBoom = errors.New("boom")
