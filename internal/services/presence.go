package services

import (
	"context"
	"time"
)

type sessionStorage interface {
	Touch(ctx context.Context, userID string, at time.Time) error
	SetOffline(ctx context.Context, userID string) error
	ActiveSince(ctx context.Context, since time.Time, userIDs []string) (map[string]bool, error)
}

// PresenceService tracks the advisory "is this user looking at the app" signal.
// The same window is used by every email gate.
type PresenceService struct {
	sessions sessionStorage
	window   time.Duration
	now      func() time.Time
}

func NewPresenceService(sessions sessionStorage, window time.Duration) *PresenceService {
	return &PresenceService{sessions: sessions, window: window, now: time.Now}
}

func (s *PresenceService) Heartbeat(ctx context.Context, userID string) error {
	return s.sessions.Touch(ctx, userID, s.now())
}

func (s *PresenceService) Offline(ctx context.Context, userID string) error {
	return s.sessions.SetOffline(ctx, userID)
}

// ActiveSet returns the subset of userIDs seen within the window or flagged online.
func (s *PresenceService) ActiveSet(ctx context.Context, userIDs []string) (map[string]bool, error) {
	if len(userIDs) == 0 {
		return map[string]bool{}, nil
	}
	return s.sessions.ActiveSince(ctx, s.now().Add(-s.window), userIDs)
}

func (s *PresenceService) IsActive(ctx context.Context, userID string) (bool, error) {
	active, err := s.ActiveSet(ctx, []string{userID})
	if err != nil {
		return false, err
	}
	return active[userID], nil
}
