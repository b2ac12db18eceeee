package models

import "time"

// Like represents a like on a post
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"index;uniqueIndex:idx_post_user_like"`
	UserID    string    `json:"user_id" gorm:"size:128;index;uniqueIndex:idx_post_user_like"`
	CreatedAt time.Time `json:"created_at"`
}

// PostReaction is an emoji reaction on a post. A user may leave several
// different emojis on the same post, but each only once.
type PostReaction struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"index;uniqueIndex:idx_post_user_emoji"`
	UserID    string    `json:"user_id" gorm:"size:128;index;uniqueIndex:idx_post_user_emoji"`
	Emoji     string    `json:"emoji" gorm:"size:32;uniqueIndex:idx_post_user_emoji"`
	CreatedAt time.Time `json:"created_at"`
}

type ReactionRequest struct {
	Emoji string `json:"emoji" validate:"required,max=32"`
}

// ReactionCount is one row of the per-emoji summary for a post.
type ReactionCount struct {
	Emoji string `json:"emoji"`
	Count int64  `json:"count"`
}
