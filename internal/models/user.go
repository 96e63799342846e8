// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered account in the Inkwell application.
// Password holds the bcrypt hash only; the plaintext is never persisted.
type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username  string               `bson:"username" json:"username"`
	Email     string               `bson:"email" json:"email"`
	Password  string               `bson:"password" json:"-"`
	BlogPosts []primitive.ObjectID `bson:"blog_posts" json:"blog_posts,omitempty"`
	CreatedAt time.Time            `bson:"created_at" json:"created_at"`
}
