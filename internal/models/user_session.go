package models

import "time"

// UserSession is the presence row a signed-in client refreshes every minute.
// It is advisory only.
type UserSession struct {
	UserID     string    `json:"user_id" gorm:"primaryKey;size:128"`
	LastActive time.Time `json:"last_active" gorm:"index"`
	IsOnline   bool      `json:"is_online" gorm:"index"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PushToken is a Firebase Cloud Messaging registration token for one browser or device.
type PushToken struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"user_id" gorm:"size:128;index"`
	Token      string    `json:"token" gorm:"uniqueIndex"`
	DeviceName string    `json:"device_name"`
	CreatedAt  time.Time `json:"created_at"`
}

type RegisterPushTokenRequest struct {
	Token      string `json:"token" validate:"required,max=4096"`
	DeviceName string `json:"device_name" validate:"omitempty,max=100"`
}
