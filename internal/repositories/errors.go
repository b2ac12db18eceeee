package repositories

import "errors"

var (
	ErrPostNotFound         = errors.New("post not found")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrLikeNotFound         = errors.New("like not found")
	ErrReactionNotFound     = errors.New("reaction not found")
	ErrSavedNotFound        = errors.New("saved post not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrAlreadyExists        = errors.New("already exists")
)
