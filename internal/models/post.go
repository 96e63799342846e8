package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a blog post in the Inkwell application.
// AuthorID is set exactly once at creation from the authenticated identity
// and is never client-supplied. The author's username is not stored on the
// post; read paths resolve it from the users collection.
type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Content   string             `bson:"content" json:"content"`
	AuthorID  primitive.ObjectID `bson:"author_id" json:"author_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// AuthorRef identifies a post's author with the username resolved at read time.
type AuthorRef struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
}

// PostDetail is the wire shape for single-post responses.
type PostDetail struct {
	ID        primitive.ObjectID `json:"id"`
	Title     string             `json:"title"`
	Content   string             `json:"content"`
	Author    AuthorRef          `json:"author"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// PostSummary is the wire shape for the public post listing.
// Author is the username resolved at read time; null when the
// owning account no longer exists.
type PostSummary struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Author  *string `json:"author"`
}

// UserPostSummary is the wire shape for listing a single user's posts.
type UserPostSummary struct {
	ID      primitive.ObjectID `json:"id"`
	Title   string             `json:"title"`
	Content string             `json:"content"`
	Author  string             `json:"author"`
}
