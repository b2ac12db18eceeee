package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// NotificationType is the closed set of notification kinds.
type NotificationType string

const (
	NotificationLike            NotificationType = "like"
	NotificationReply           NotificationType = "reply"
	NotificationMention         NotificationType = "mention"
	NotificationRetweet         NotificationType = "retweet"
	NotificationBookmark        NotificationType = "bookmark"
	NotificationReaction        NotificationType = "reaction"
	NotificationLanguageMention NotificationType = "language_mention"
)

// NotificationTypes lists every NotificationType.
var NotificationTypes = []NotificationType{
	NotificationLike,
	NotificationReply,
	NotificationMention,
	NotificationRetweet,
	NotificationBookmark,
	NotificationReaction,
	NotificationLanguageMention,
}

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationLike, NotificationReply, NotificationMention, NotificationRetweet,
		NotificationBookmark, NotificationReaction, NotificationLanguageMention:
		return true
	}
	return false
}

// Title is the short heading used for push and email subjects.
func (t NotificationType) Title() string {
	switch t {
	case NotificationLike:
		return "New like"
	case NotificationReply:
		return "New reply"
	case NotificationMention:
		return "You were mentioned"
	case NotificationRetweet:
		return "Your shoutout was reshared"
	case NotificationBookmark:
		return "Your shoutout was bookmarked"
	case NotificationReaction:
		return "New reaction"
	case NotificationLanguageMention:
		return "New post in your languages"
	}
	panic(fmt.Sprintf("unhandled notification type %q", string(t)))
}

// Render builds the in-app text. detail is the emoji for reactions, the
// matched languages for language mentions, and ignored otherwise.
func (t NotificationType) Render(actor, detail string) string {
	switch t {
	case NotificationLike:
		return actor + " liked your shoutout"
	case NotificationReply:
		return actor + " replied to your shoutout"
	case NotificationMention:
		return actor + " mentioned you in a shoutout"
	case NotificationRetweet:
		return actor + " reshared your shoutout"
	case NotificationBookmark:
		return actor + " bookmarked your shoutout"
	case NotificationReaction:
		if detail == "" {
			return actor + " reacted to your shoutout"
		}
		return actor + " reacted " + detail + " to your shoutout"
	case NotificationLanguageMention:
		if detail == "" {
			return actor + " posted in a language you follow"
		}
		return actor + " posted about " + detail
	}
	panic(fmt.Sprintf("unhandled notification type %q", string(t)))
}

type NotificationMetadata struct {
	PostID    string   `json:"post_id,omitempty"`
	CommentID uint     `json:"comment_id,omitempty"`
	Excerpt   string   `json:"excerpt,omitempty"`
	Emoji     string   `json:"emoji,omitempty"`
	Languages []string `json:"languages,omitempty"`
}

// Notification is an in-app notification row.
type Notification struct {
	ID          uint                                      `json:"id" gorm:"primaryKey"`
	RecipientID string                                    `json:"recipient_id" gorm:"size:128;index"`
	SenderID    string                                    `json:"sender_id" gorm:"size:128;index"`
	Type        NotificationType                          `json:"type" gorm:"size:30;index"`
	Content     string                                    `json:"content"`
	Metadata    datatypes.JSONType[NotificationMetadata] `json:"metadata" gorm:"type:jsonb"`
	IsRead      bool                                      `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time                                 `json:"created_at" gorm:"index"`
}
