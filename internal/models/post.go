package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a blog post stored in MongoDB. Post authoring is mostly
// outside this service; engagement needs the post for existence checks,
// author lookups and denormalized counters.
type Post struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID       uint               `json:"author_id" bson:"author_id"`
	Title          string             `json:"title" bson:"title"`
	Content        string             `json:"content" bson:"content"`
	ReactionsCount int                `json:"reactions_count" bson:"reactions_count"`
	CommentsCount  int                `json:"comments_count" bson:"comments_count"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=200"`
	Content string `json:"content" validate:"required,min=1"`
}
