package preferences

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DefaultMongoCollection is the collection used by NewMongoStorage.
const DefaultMongoCollection = "notification_preferences"

// MongoStorage stores preferences as one document per user keyed by user id.
type MongoStorage struct {
	coll *mongo.Collection
}

// NewMongoStorage creates a Storage over the notification_preferences
// collection of db.
func NewMongoStorage(db *mongo.Database) *MongoStorage {
	return &MongoStorage{coll: db.Collection(DefaultMongoCollection)}
}

type mongoPreferences struct {
	UserID          string              `bson:"_id"`
	Channels        map[string][]string `bson:"channels"`
	EmailEnabled    bool                `bson:"email_enabled"`
	PushEnabled     bool                `bson:"push_enabled"`
	QuietHoursStart string              `bson:"quiet_hours_start"`
	QuietHoursEnd   string              `bson:"quiet_hours_end"`
	Timezone        string              `bson:"timezone"`
	CreatedAt       time.Time           `bson:"created_at"`
	UpdatedAt       time.Time           `bson:"updated_at"`
}

func (s *MongoStorage) Get(ctx context.Context, userID string) (*Preferences, error) {
	var doc mongoPreferences
	if err := s.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPreferencesNotFound
		}
		return nil, errors.Join(ErrStorage, err)
	}

	return &Preferences{
		UserID:          doc.UserID,
		Channels:        decodeChannels(doc.Channels),
		EmailEnabled:    doc.EmailEnabled,
		PushEnabled:     doc.PushEnabled,
		QuietHoursStart: doc.QuietHoursStart,
		QuietHoursEnd:   doc.QuietHoursEnd,
		Timezone:        doc.Timezone,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}, nil
}

// CreateIfAbsent upserts with $setOnInsert so an existing document is untouched.
func (s *MongoStorage) CreateIfAbsent(ctx context.Context, p Preferences) error {
	doc := toMongo(p)
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": p.UserID},
		bson.M{"$setOnInsert": bson.M{
			"channels":          doc.Channels,
			"email_enabled":     doc.EmailEnabled,
			"push_enabled":      doc.PushEnabled,
			"quiet_hours_start": doc.QuietHoursStart,
			"quiet_hours_end":   doc.QuietHoursEnd,
			"timezone":          doc.Timezone,
			"created_at":        doc.CreatedAt,
			"updated_at":        doc.UpdatedAt,
		}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (s *MongoStorage) Save(ctx context.Context, p Preferences) error {
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": p.UserID}, toMongo(p), options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func toMongo(p Preferences) mongoPreferences {
	return mongoPreferences{
		UserID:          p.UserID,
		Channels:        encodeChannels(p.Channels),
		EmailEnabled:    p.EmailEnabled,
		PushEnabled:     p.PushEnabled,
		QuietHoursStart: p.QuietHoursStart,
		QuietHoursEnd:   p.QuietHoursEnd,
		Timezone:        p.Timezone,
		CreatedAt:       p.CreatedAt.UTC(),
		UpdatedAt:       p.UpdatedAt.UTC(),
	}
}
