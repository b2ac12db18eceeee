package models

import "gorm.io/gorm"

// Comment represents a comment on a post
type Comment struct {
	gorm.Model
	PostID      string `json:"post_id" gorm:"index"` // UUID of the post in MongoDB
	UserID      string `json:"user_id" gorm:"index;size:128"`
	Content     string `json:"content"`
	AIGenerated bool   `json:"ai_generated" gorm:"default:false"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}
