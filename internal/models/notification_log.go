package models

import (
	"time"

	"gorm.io/datatypes"
)

// EmailStatus is the outcome recorded for one email notification attempt.
type EmailStatus string

const (
	EmailSent              EmailStatus = "sent"
	EmailFailed            EmailStatus = "failed"
	EmailSkippedActiveUser EmailStatus = "skipped_active_user"
	EmailSkippedOptOut     EmailStatus = "skipped_opt_out"
	EmailSkippedDuplicate  EmailStatus = "skipped_duplicate"
	EmailSkippedNoEmail    EmailStatus = "skipped_no_email"
	EmailQueued            EmailStatus = "queued"
)

type NotificationLogMetadata struct {
	PostID string           `json:"post_id,omitempty"`
	Type   NotificationType `json:"type,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// NotificationLog is an append-only audit row for email delivery. A "sent"
// row for (recipient, post) is what suppresses repeat emails.
type NotificationLog struct {
	ID          uint                                         `json:"id" gorm:"primaryKey"`
	RecipientID string                                       `json:"recipient_id" gorm:"size:128;index"`
	Email       string                                       `json:"email"`
	Subject     string                                       `json:"subject"`
	Status      EmailStatus                                  `json:"status" gorm:"size:30;index"`
	Metadata    datatypes.JSONType[NotificationLogMetadata] `json:"metadata" gorm:"type:jsonb"`
	CreatedAt   time.Time                                    `json:"created_at"`
}

func (NotificationLog) TableName() string { return "notification_logs" }
