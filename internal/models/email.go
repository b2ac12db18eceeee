package models

import (
	"time"

	"gorm.io/datatypes"
)

// EmailNotificationRequest asks for one email to one recipient. It is the
// body of the send-email-notification function and the payload of outbox jobs.
type EmailNotificationRequest struct {
	RecipientID string           `json:"recipient_id" validate:"required"`
	SenderID    string           `json:"sender_id,omitempty"`
	Type        NotificationType `json:"type" validate:"required"`
	PostID      string           `json:"post_id,omitempty"`
	Subject     string           `json:"subject" validate:"required,max=200"`
	HTMLBody    string           `json:"html_body" validate:"required"`
	TextBody    string           `json:"text_body,omitempty"`
	// SkipPresenceCheck is set by callers that already applied the presence gate.
	SkipPresenceCheck bool `json:"skip_presence_check,omitempty"`
}

type EmailJobStatus string

const (
	EmailJobPending EmailJobStatus = "pending"
	EmailJobSent    EmailJobStatus = "sent"
	EmailJobFailed  EmailJobStatus = "failed"
)

// EmailJob is an outbox row drained by the email dispatcher.
type EmailJob struct {
	ID          uint                                          `json:"id" gorm:"primaryKey"`
	Payload     datatypes.JSONType[EmailNotificationRequest] `json:"payload" gorm:"type:jsonb"`
	Status      EmailJobStatus                                `json:"status" gorm:"size:20;index;default:'pending'"`
	RetryCount  int                                           `json:"retry_count" gorm:"default:0"`
	NextRetryAt *time.Time                                    `json:"next_retry_at" gorm:"index"`
	LastError   string                                        `json:"last_error"`
	CreatedAt   time.Time                                     `json:"created_at"`
	UpdatedAt   time.Time                                     `json:"updated_at"`
}
