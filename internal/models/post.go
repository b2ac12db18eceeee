package models

import "time"

// PostMetadata is the loosely structured part of a post that owners and the
// generator may patch after creation.
type PostMetadata struct {
	DisplayName string   `json:"display_name,omitempty" bson:"display_name,omitempty"`
	Languages   []string `json:"languages,omitempty" bson:"languages,omitempty"`
	AIGenerated bool     `json:"ai_generated,omitempty" bson:"ai_generated,omitempty"`
}

// Post is a short message ("shoutout") stored in MongoDB. ID is a UUID.
type Post struct {
	ID            string       `json:"id" bson:"_id"`
	UserID        string       `json:"user_id" bson:"user_id"`
	Content       string       `json:"content" bson:"content"`
	ImageURLs     []string     `json:"image_urls,omitempty" bson:"image_urls,omitempty"`
	Metadata      PostMetadata `json:"metadata" bson:"metadata"`
	LikesCount    int          `json:"likes_count" bson:"likes_count"`
	CommentsCount int          `json:"comments_count" bson:"comments_count"`
	CreatedAt     time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" bson:"updated_at"`
}

// Excerpt returns at most n runes of the content, with an ellipsis when cut.
func (p *Post) Excerpt(n int) string {
	return Excerpt(p.Content, n)
}

// Excerpt returns at most n runes of s, with an ellipsis when cut.
func Excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content   string   `json:"content" validate:"required,min=1,max=500"`
	ImageURLs []string `json:"image_urls,omitempty" validate:"omitempty,max=4,dive,url"`
	// Languages adds explicit tags on top of the @word tags found in Content.
	Languages []string `json:"languages,omitempty" validate:"omitempty,max=10,dive,min=1,max=40"`
}

// UpdatePostRequest defines the request body for editing a post's text
type UpdatePostRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// PatchPostMetadataRequest patches metadata fields; nil fields are left alone.
type PatchPostMetadataRequest struct {
	DisplayName *string  `json:"display_name,omitempty" validate:"omitempty,max=50"`
	Languages   []string `json:"languages,omitempty" validate:"omitempty,max=10,dive,min=1,max=40"`
}
