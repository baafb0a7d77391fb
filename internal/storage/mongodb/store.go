package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/nattawatz/blog-api/internal/models"
	"github.com/nattawatz/blog-api/internal/storage"
)

// Ensure Store satisfies the storage interfaces at compile time.
var (
	_ storage.UserStore  = (*Store)(nil)
	_ storage.TokenStore = (*Store)(nil)
)

// Store provides MongoDB-backed persistence for users and refresh tokens.
type Store struct {
	client *mongo.Client
	users  *mongo.Collection
	tokens *mongo.Collection
}

// New connects to MongoDB, verifies the connection, and ensures the
// unique indexes the auth flows rely on.
func New(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client: client,
		users:  db.Collection("users"),
		tokens: db.Collection("refresh_tokens"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := s.users.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	tokenIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "token", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	}
	if _, err := s.tokens.Indexes().CreateMany(ctx, tokenIndexes); err != nil {
		return fmt.Errorf("create token indexes: %w", err)
	}
	return nil
}

// Create inserts a new user document. The unique indexes on email and
// username turn concurrent duplicate registrations into ErrAlreadyExists.
func (s *Store) Create(ctx context.Context, user models.User) (models.User, error) {
	user.ID = bson.NewObjectID()
	user.CreatedAt = time.Now().UTC()

	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// FindByEmail fetches a user by email address.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

// FindByID fetches a user by its hex object id.
func (s *Store) FindByID(ctx context.Context, id string) (models.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, storage.ErrNotFound
	}

	var user models.User
	err = s.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user by id: %w", err)
	}
	return user, nil
}

// Save persists a refresh-token record for later existence checks.
func (s *Store) Save(ctx context.Context, token string, userID bson.ObjectID) error {
	record := models.RefreshToken{
		ID:        bson.NewObjectID(),
		Token:     token,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.tokens.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// Exists reports whether a refresh-token record is present.
func (s *Store) Exists(ctx context.Context, token string) (bool, error) {
	count, err := s.tokens.CountDocuments(ctx, bson.M{"token": token}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count refresh tokens: %w", err)
	}
	return count > 0, nil
}

// Delete removes a refresh-token record, revoking the token. Deleting a
// token that is already gone is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	if _, err := s.tokens.DeleteOne(ctx, bson.M{"token": token}); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}
