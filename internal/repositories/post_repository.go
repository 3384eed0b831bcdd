package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bloggingapp/engagement-backend/internal/models"
)

// ErrPostNotFound is returned when a post does not exist in MongoDB
var ErrPostNotFound = errors.New("post not found")

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	IncrementReactionsCount(ctx context.Context, postID string, delta int) error
	IncrementCommentsCount(ctx context.Context, postID string) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID %q: %w", id, ErrPostNotFound)
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// IncrementReactionsCount adjusts the denormalized reaction counter on a post
func (r *MongoPostRepository) IncrementReactionsCount(ctx context.Context, postID string, delta int) error {
	return r.incrementCounter(ctx, postID, "reactions_count", delta)
}

// IncrementCommentsCount bumps the denormalized comment counter on a post
func (r *MongoPostRepository) IncrementCommentsCount(ctx context.Context, postID string) error {
	return r.incrementCounter(ctx, postID, "comments_count", 1)
}

func (r *MongoPostRepository) incrementCounter(ctx context.Context, postID, field string, delta int) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return fmt.Errorf("invalid post ID %q: %w", postID, ErrPostNotFound)
	}
	_, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{
			"$inc": bson.M{field: delta},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	return err
}
