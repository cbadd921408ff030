package userstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/auth"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/logger"
)

// DefaultCollection is the collection accounts are stored in.
const DefaultCollection = "users"

// Index names. Duplicate key errors are attributed to a field by index name.
const (
	IndexUsername = "users_username_unique"
	IndexEmail    = "users_email_unique"
	IndexProvider = "users_provider_unique"
)

var _ auth.Store = (*Mongo)(nil)

// Mongo is an auth.Store backed by a MongoDB collection.
type Mongo struct {
	coll   *mongo.Collection
	logger *slog.Logger
	now    func() time.Time
}

// MongoOption configures a Mongo store.
type MongoOption func(*Mongo)

// WithMongoLogger sets the store logger.
func WithMongoLogger(l *slog.Logger) MongoOption {
	return func(m *Mongo) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMongoClock overrides the clock used for CreatedAt and UpdatedAt.
func WithMongoClock(now func() time.Time) MongoOption {
	return func(m *Mongo) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMongo returns a store over db.users.
func NewMongo(db *mongo.Database, opts ...MongoOption) *Mongo {
	return NewMongoCollection(db.Collection(DefaultCollection), opts...)
}

// NewMongoCollection returns a store over coll.
func NewMongoCollection(coll *mongo.Collection, opts ...MongoOption) *Mongo {
	m := &Mongo{
		coll:   coll,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logger.Component("userstore"))
	return m
}

// EnsureIndexes creates the unique indexes the store relies on. Safe to call on
// every start; existing indexes with the same definition are left alone.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	nonEmpty := func(field string) bson.D {
		return bson.D{{Key: field, Value: bson.D{{Key: "$type", Value: "string"}, {Key: "$gt", Value: ""}}}}
	}

	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName(IndexUsername).SetUnique(true).SetPartialFilterExpression(nonEmpty("username")),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(IndexEmail).SetUnique(true).SetPartialFilterExpression(nonEmpty("email")),
		},
		{
			Keys:    bson.D{{Key: "provider", Value: 1}, {Key: "providerId", Value: 1}},
			Options: options.Index().SetName(IndexProvider).SetUnique(true).SetPartialFilterExpression(nonEmpty("providerId")),
		},
	}

	if _, err := m.coll.Indexes().CreateMany(ctx, models); err != nil {
		return classify("ensure indexes", err)
	}
	return nil
}

// FindByUsername returns the account with the exact username, or auth.ErrUserNotFound.
func (m *Mongo) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	if username == "" {
		return nil, auth.ErrUserNotFound
	}
	return m.findOne(ctx, "find by username", bson.D{{Key: "username", Value: username}})
}

// FindByEmail returns the account with the normalized email, or auth.ErrUserNotFound.
func (m *Mongo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	email = auth.NormalizeEmail(email)
	if email == "" {
		return nil, auth.ErrUserNotFound
	}
	return m.findOne(ctx, "find by email", bson.D{{Key: "email", Value: email}})
}

// FindByProvider returns the account linked to the provider identity, or auth.ErrUserNotFound.
func (m *Mongo) FindByProvider(ctx context.Context, provider, providerID string) (*auth.User, error) {
	if providerID == "" {
		return nil, auth.ErrUserNotFound
	}
	return m.findOne(ctx, "find by provider", bson.D{
		{Key: "provider", Value: provider},
		{Key: "providerId", Value: providerID},
	})
}

// ExistsByUsername reports whether the username is taken.
func (m *Mongo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if username == "" {
		return false, nil
	}
	return m.exists(ctx, "exists by username", bson.D{{Key: "username", Value: username}})
}

// ExistsByEmail reports whether the normalized email is taken.
func (m *Mongo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	email = auth.NormalizeEmail(email)
	if email == "" {
		return false, nil
	}
	return m.exists(ctx, "exists by email", bson.D{{Key: "email", Value: email}})
}

// Save upserts u by _id in a single write.
func (m *Mongo) Save(ctx context.Context, u *auth.User) (*auth.User, error) {
	rec := prepare(u, m.now().Truncate(time.Millisecond))

	if u.ID != "" {
		// Keep the original creation time on replace.
		var prev struct {
			CreatedAt time.Time `bson:"createdAt"`
		}
		err := m.coll.FindOne(ctx, bson.D{{Key: "_id", Value: rec.ID}},
			options.FindOne().SetProjection(bson.D{{Key: "createdAt", Value: 1}})).Decode(&prev)
		switch {
		case err == nil:
			if !prev.CreatedAt.IsZero() {
				rec.CreatedAt = prev.CreatedAt.UTC()
			}
		case !errors.Is(err, mongo.ErrNoDocuments):
			return nil, classify("save", err)
		}
	}

	_, err := m.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: rec.ID}}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		err = classify("save", err)
		if errors.Is(err, auth.ErrUniqueViolation) {
			m.logger.DebugContext(ctx, "save rejected by unique index", logger.UserID(rec.ID), logger.Error(err))
		} else {
			m.logger.ErrorContext(ctx, "save failed", logger.UserID(rec.ID), logger.Error(err))
		}
		return nil, err
	}

	u.ID, u.CreatedAt, u.UpdatedAt = rec.ID, rec.CreatedAt, rec.UpdatedAt
	return rec, nil
}

func (m *Mongo) findOne(ctx context.Context, op string, filter bson.D) (*auth.User, error) {
	var u auth.User
	if err := m.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrUserNotFound
		}
		return nil, classify(op, err)
	}
	return &u, nil
}

func (m *Mongo) exists(ctx context.Context, op string, filter bson.D) (bool, error) {
	n, err := m.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, classify(op, err)
	}
	return n > 0, nil
}

// classify maps driver errors onto the auth.Store error contract.
func classify(op string, err error) error {
	switch {
	case mongo.IsDuplicateKeyError(err):
		return auth.UniqueViolation(duplicateField(err))
	case mongo.IsTimeout(err),
		mongo.IsNetworkError(err),
		errors.Is(err, mongo.ErrClientDisconnected),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		isServerSelection(err):
		return auth.StoreUnavailable(op, err)
	default:
		return fmt.Errorf("userstore: %s: %w", op, err)
	}
}

// duplicateField attributes a duplicate key error to the violated index.
func duplicateField(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, IndexUsername):
		return auth.ErrUsernameTaken
	case strings.Contains(msg, IndexEmail):
		return auth.ErrEmailTaken
	case strings.Contains(msg, IndexProvider):
		return ErrProviderLinked
	default:
		return fmt.Errorf("duplicate key: %w", err)
	}
}

func isServerSelection(err error) bool {
	return strings.Contains(err.Error(), "server selection error")
}
