// Package mongo stores users, workouts and templates as MongoDB documents.
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/johnnywrightiv/workout-tracker-sub000/internal/domain"
	"github.com/johnnywrightiv/workout-tracker-sub000/internal/persistence"
)

const (
	usersCollection     = "users"
	workoutsCollection  = "workouts"
	templatesCollection = "templates"
)

// Connect opens a client, pings the primary and ensures indexes on database.
func Connect(ctx context.Context, uri, database string) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, err
	}
	db := client.Database(database)
	if err := ensureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, err
	}
	return db, nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "resetTokenHash", Value: 1}}, Options: options.Index().SetSparse(true)},
	}); err != nil {
		return err
	}
	if _, err := db.Collection(workoutsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "startTime", Value: -1}},
	}); err != nil {
		return err
	}
	_, err := db.Collection(templatesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}

// Store implements domain.Store on top of a lazily connected database.
type Store struct {
	db *persistence.Lazy[*mongo.Database]
}

// NewStore constructs a Store that connects on first use.
func NewStore(uri, database string, timeout time.Duration) *Store {
	return &Store{db: persistence.NewLazy("mongodb",
		func(ctx context.Context) (*mongo.Database, error) { return Connect(ctx, uri, database) },
		func(ctx context.Context, db *mongo.Database) error { return db.Client().Disconnect(ctx) },
		timeout,
	)}
}

var _ domain.Store = (*Store)(nil)

// Close disconnects the client if it was opened.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Close(ctx)
}

// Ping checks connectivity, connecting first if needed.
func (s *Store) Ping(ctx context.Context) error {
	db, err := s.db.Get(ctx)
	if err != nil {
		return err
	}
	return db.Client().Ping(ctx, nil)
}

func (s *Store) collection(ctx context.Context, name string) (*mongo.Collection, error) {
	db, err := s.db.Get(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

// CreateUser implements domain.UserRepository.
func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	users, err := s.collection(ctx, usersCollection)
	if err != nil {
		return err
	}
	_, err = users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrEmailTaken
	}
	return err
}

// FindUserByEmail implements domain.UserRepository.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

// FindUserByID implements domain.UserRepository.
func (s *Store) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*domain.User, error) {
	users, err := s.collection(ctx, usersCollection)
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := users.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// SetResetToken implements domain.UserRepository.
func (s *Store) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	users, err := s.collection(ctx, usersCollection)
	if err != nil {
		return err
	}
	_, err = users.UpdateByID(ctx, userID, bson.M{"$set": bson.M{
		"resetTokenHash": tokenHash,
		"resetExpiresAt": expiresAt,
		"updatedAt":      time.Now().UTC(),
	}})
	return err
}

// ConsumeResetToken implements domain.UserRepository. A single conditional update matches, checks
// expiry and clears the token.
func (s *Store) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (bool, error) {
	users, err := s.collection(ctx, usersCollection)
	if err != nil {
		return false, err
	}
	res, err := users.UpdateOne(ctx,
		bson.M{"resetTokenHash": tokenHash, "resetExpiresAt": bson.M{"$gt": now}},
		bson.M{
			"$set":   bson.M{"passwordHash": passwordHash, "updatedAt": now},
			"$unset": bson.M{"resetTokenHash": "", "resetExpiresAt": ""},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// UpdatePasswordHash implements domain.UserRepository.
func (s *Store) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	users, err := s.collection(ctx, usersCollection)
	if err != nil {
		return err
	}
	_, err = users.UpdateByID(ctx, userID, bson.M{"$set": bson.M{"passwordHash": passwordHash, "updatedAt": time.Now().UTC()}})
	return err
}

// UpdatePreferences implements domain.UserRepository.
func (s *Store) UpdatePreferences(ctx context.Context, userID string, prefs domain.Preferences) error {
	users, err := s.collection(ctx, usersCollection)
	if err != nil {
		return err
	}
	_, err = users.UpdateByID(ctx, userID, bson.M{"$set": bson.M{"preferences": prefs, "updatedAt": time.Now().UTC()}})
	return err
}
