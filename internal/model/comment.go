package model

import (
	"time"
)

// Comment is the canonical in-memory record for one thread node. Id is
// positive for server-assigned records and negative for optimistic ones,
// IsOptimistic must agree with the sign of Id at all times.
type Comment struct {
	Id           int64     `json:"id"`
	MaterialId   int64     `json:"material_id"`
	UserId       int64     `json:"user_id"`
	Username     string    `json:"username"`
	UserAvatar   *string   `json:"user_avatar,omitempty"`
	Content      string    `json:"content"`
	ParentId     *int64    `json:"parent_id,omitempty"`
	LikesCount   int64     `json:"likes_count"`
	IsLiked      bool      `json:"is_liked"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Replies      []Comment `json:"replies"`
	IsOptimistic bool      `json:"is_optimistic"`
}

type CommentList struct {
	Items       []Comment `json:"items"`
	Total       int64     `json:"total"`
	Pages       int64     `json:"pages"`
	CurrentPage int64     `json:"current_page"`
}

type CreateCommentRequest struct {
	Content string `json:"content"`
}

type CreateReplyRequest struct {
	Content string `json:"content"`
}

type ThreadResponse struct {
	Items       []Comment `json:"items"`
	Total       int64     `json:"total"`
	Pages       int64     `json:"pages"`
	CurrentPage int64     `json:"current_page"`
	LastError   string    `json:"last_error,omitempty"`
}
