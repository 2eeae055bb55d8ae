package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/users-api/internal/domain"
	"github.com/phrazzld/users-api/internal/platform/logger"
	"github.com/phrazzld/users-api/internal/redact"
	"github.com/phrazzld/users-api/internal/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	driver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// userDocument is the stored form of a user.
type userDocument struct {
	ID        bson.ObjectID `bson:"_id"`
	Name      string        `bson:"name"`
	Email     string        `bson:"email"`
	Password  string        `bson:"password"`
	IsAdmin   bool          `bson:"isAdmin"`
	Date      time.Time     `bson:"date"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func toDocument(u *domain.User) (userDocument, error) {
	oid, err := bson.ObjectIDFromHex(u.ID)
	if err != nil {
		return userDocument{}, domain.ErrInvalidID
	}
	return userDocument{
		ID:        oid,
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.HashedPassword,
		IsAdmin:   u.IsAdmin,
		Date:      u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
	}, nil
}

func (d userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:             d.ID.Hex(),
		Name:           d.Name,
		Email:          d.Email,
		HashedPassword: d.Password,
		IsAdmin:        d.IsAdmin,
		CreatedAt:      d.Date.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
}

// patchUpdate builds the $set document for patch, stamped with now.
func patchUpdate(patch domain.UserPatch, now time.Time) bson.D {
	set := bson.D{}
	if patch.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *patch.Name})
	}
	if patch.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *patch.Email})
	}
	if patch.IsAdmin != nil {
		set = append(set, bson.E{Key: "isAdmin", Value: *patch.IsAdmin})
	}
	set = append(set, bson.E{Key: "updatedAt", Value: now})
	return bson.D{{Key: "$set", Value: set}}
}

// MongoUserStore implements store.UserStore on a MongoDB collection.
type MongoUserStore struct {
	coll   *driver.Collection
	logger *slog.Logger
}

var _ store.UserStore = (*MongoUserStore)(nil)

// NewMongoUserStore creates a store over coll.
func NewMongoUserStore(coll *driver.Collection, log *slog.Logger) *MongoUserStore {
	if coll == nil {
		panic("collection cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &MongoUserStore{
		coll:   coll,
		logger: log.With(slog.String("component", "user_store"), slog.String("backend", "mongo")),
	}
}

// List returns all users, oldest first.
func (s *MongoUserStore) List(ctx context.Context) ([]*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cursor, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		log.Error("failed to query users", slog.String("error", redact.Error(err)))
		return nil, mapUserError(err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		log.Error("failed to decode users", slog.String("error", redact.Error(err)))
		return nil, mapUserError(err)
	}

	users := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toDomain())
	}

	log.Debug("listed users", slog.Int("count", len(users)))
	return users, nil
}

// Create inserts a new user. The user must already carry a hashed password.
func (s *MongoUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if user.HashedPassword == "" {
		return store.NewStoreError("user", "create", "hashed password is required", store.ErrInvalidEntity)
	}
	if err := user.Validate(); err != nil {
		log.Debug("user failed validation", slog.String("user_id", user.ID), slog.String("error", redact.Error(err)))
		return err
	}

	doc, err := toDocument(user)
	if err != nil {
		return err
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		mapped := mapUserError(err)
		if store.IsDuplicateError(mapped) {
			log.Debug("email already exists", slog.String("user_id", user.ID))
			return mapped
		}
		log.Error("failed to insert user", slog.String("user_id", user.ID), slog.String("error", redact.Error(err)))
		return mapped
	}

	log.Debug("user created", slog.String("user_id", user.ID))
	return nil
}

// GetByID returns the user with id.
func (s *MongoUserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrUserNotFound
	}
	return s.findOne(ctx, bson.D{{Key: "_id", Value: oid}}, slog.String("user_id", id))
}

// GetByEmail returns the user with the given email, compared after
// normalisation.
func (s *MongoUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: domain.NormalizeEmail(email)}}, slog.String("lookup", "email"))
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.D, attr slog.Attr) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var doc userDocument
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		mapped := mapUserError(err)
		if store.IsNotFoundError(mapped) {
			log.Debug("user not found", attr)
			return nil, mapped
		}
		log.Error("failed to fetch user", attr, slog.String("error", redact.Error(err)))
		return nil, mapped
	}
	return doc.toDomain(), nil
}

// Update applies patch to the user with id and returns the stored result.
// A missing user is reported as store.ErrUserNotFound; nothing is inserted.
func (s *MongoUserStore) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrUserNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	res := s.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		patchUpdate(patch, time.Now().UTC()),
		opts,
	)

	var doc userDocument
	if err := res.Decode(&doc); err != nil {
		mapped := mapUserError(err)
		switch {
		case store.IsNotFoundError(mapped):
			log.Debug("user not found for update", slog.String("user_id", id))
		case store.IsDuplicateError(mapped):
			log.Debug("email already exists", slog.String("user_id", id))
		default:
			log.Error("failed to update user", slog.String("user_id", id), slog.String("error", redact.Error(err)))
			return nil, fmt.Errorf("failed to update user: %w", mapped)
		}
		return nil, mapped
	}

	log.Debug("user updated", slog.String("user_id", id))
	return doc.toDomain(), nil
}
