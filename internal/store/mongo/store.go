// Package mongo is the MongoDB backend of store.Store.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/example/workoutbot/internal/store"
	"github.com/example/workoutbot/pkg/models"
)

const (
	collectionName = "workout_users"
	defaultTimeout = 10 * time.Second
)

// userDocument is one user as stored in the collection
type userDocument struct {
	UserID    string            `bson:"_id"`
	Version   int64             `bson:"version"`
	Record    models.UserRecord `bson:"record"`
	CreatedAt time.Time         `bson:"created_at"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

// Store keeps one document per user. Updates replace the document only if
// its version is unchanged since it was read.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// ConnectDB establishes a connection to MongoDB and verifies it with a ping.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %v", err)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, fmt.Errorf("failed to ping mongo: %v", err)
	}
	return client, nil
}

// Open connects to uri and uses the workout_users collection of database
func Open(uri, database string) (*Store, error) {
	client, err := ConnectDB(uri)
	if err != nil {
		return nil, err
	}
	return New(client, database), nil
}

// New wraps an already connected client
func New(client *mongo.Client, database string) *Store {
	return &Store{
		client:     client,
		collection: client.Database(database).Collection(collectionName),
	}
}

func (s *Store) find(ctx context.Context, userID string) (*userDocument, error) {
	var doc userDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("user %s: %w", userID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	doc.Record.Normalize()
	return &doc, nil
}

// Get returns the user's record
func (s *Store) Get(ctx context.Context, userID string) (*models.UserRecord, error) {
	doc, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &doc.Record, nil
}

// Create inserts an empty record for a new user
func (s *Store) Create(ctx context.Context, userID, username string) (*models.UserRecord, error) {
	now := time.Now().UTC()
	doc := userDocument{
		UserID:    userID,
		Version:   1,
		Record:    *models.NewUserRecord(username),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("user %s: %w", userID, store.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create user: %v", err)
	}
	return doc.Record.Clone(), nil
}

// Update applies fn to the latest record and replaces the document if its
// version did not move in between. fn may run more than once.
func (s *Store) Update(ctx context.Context, userID string, fn store.UpdateFunc) error {
	for attempt := 0; attempt < store.MaxUpdateAttempts; attempt++ {
		doc, err := s.find(ctx, userID)
		if err != nil {
			return err
		}
		if err := fn(&doc.Record); err != nil {
			return err
		}

		filter := bson.M{"_id": userID, "version": doc.Version}
		doc.Version++
		doc.UpdatedAt = time.Now().UTC()

		result, err := s.collection.ReplaceOne(ctx, filter, doc)
		if err != nil {
			return fmt.Errorf("failed to update user: %v", err)
		}
		if result.MatchedCount == 1 {
			return nil
		}
	}
	return fmt.Errorf("user %s: %w", userID, store.ErrConflict)
}

// Snapshot returns every user as one document
func (s *Store) Snapshot(ctx context.Context) (*models.Document, error) {
	cursor, err := s.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %v", err)
	}
	defer cursor.Close(ctx)

	out := models.NewDocument()
	for cursor.Next(ctx) {
		var doc userDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user: %v", err)
		}
		doc.Record.Normalize()
		rec := doc.Record
		out.Users[doc.UserID] = &rec
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %v", err)
	}
	return out, nil
}

// Close disconnects the client
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
