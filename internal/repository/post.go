package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inkwell/internal/models"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	// CreateForUser inserts the post and appends its id to the author's
	// owned-post list in a single transaction.
	CreateForUser(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	// DeleteForUser removes the post and pulls its id from the owner's
	// list in a single transaction. The pull tolerates an absent id.
	DeleteForUser(ctx context.Context, postID, authorID primitive.ObjectID) error
}

// postRepository implements PostRepository
type postRepository struct {
	db    *mongo.Database
	posts *mongo.Collection
	users *mongo.Collection
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *mongo.Database) PostRepository {
	return &postRepository{
		db:    db,
		posts: db.Collection("posts"),
		users: db.Collection("users"),
	}
}

func (r *postRepository) CreateForUser(ctx context.Context, post *models.Post) error {
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := r.posts.InsertOne(sc, post)
		if err != nil {
			return fmt.Errorf("insert post: %w", err)
		}
		post.ID = res.InsertedID.(primitive.ObjectID)

		_, err = r.users.UpdateByID(sc, post.AuthorID,
			bson.M{"$push": bson.M{"blog_posts": post.ID}})
		if err != nil {
			return fmt.Errorf("append post to owner list: %w", err)
		}
		return nil
	})
}

func (r *postRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	if err := r.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return &post, nil
}

func (r *postRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Post, error) {
	if len(ids) == 0 {
		return []*models.Post{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.posts.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find posts by ids: %w", err)
	}
	defer cur.Close(ctx)

	posts := []*models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := r.posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer cur.Close(ctx)

	posts := []*models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now()

	_, err := r.posts.UpdateByID(ctx, post.ID, bson.M{"$set": bson.M{
		"title":      post.Title,
		"content":    post.Content,
		"updated_at": post.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

func (r *postRepository) DeleteForUser(ctx context.Context, postID, authorID primitive.ObjectID) error {
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.posts.DeleteOne(sc, bson.M{"_id": postID}); err != nil {
			return fmt.Errorf("delete post: %w", err)
		}

		// $pull is a no-op when the id is not in the list.
		_, err := r.users.UpdateByID(sc, authorID,
			bson.M{"$pull": bson.M{"blog_posts": postID}})
		if err != nil {
			return fmt.Errorf("remove post from owner list: %w", err)
		}
		return nil
	})
}

func (r *postRepository) withTransaction(ctx context.Context, fn func(mongo.SessionContext) error) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
