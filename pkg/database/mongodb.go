// ==============================================
// pkg/database/mongodb.go
// ==============================================
package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"soulcare/internal/config"
	"soulcare/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names
const (
	UsersCollection        = "users"
	CredentialsCollection  = "credentials"
	MessagesCollection     = "messages"
	CallsCollection        = "calls"
	MoodCheckinsCollection = "mood_checkins"
	CallFeedbackCollection = "call_feedback"
)

// Mongo owns the process-wide client. Connect runs at most once.
type Mongo struct {
	cfg config.MongoConfig

	once     sync.Once
	connErr  error
	client   *mongo.Client
	database *mongo.Database
}

// New returns an unconnected handle for cfg.
func New(cfg config.MongoConfig) *Mongo {
	return &Mongo{cfg: cfg}
}

// Connect dials and pings MongoDB. Repeated calls return the first result.
func (m *Mongo) Connect(ctx context.Context) error {
	m.once.Do(func() {
		m.connErr = m.connect(ctx)
	})
	return m.connErr
}

func (m *Mongo) connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.ConnectTimeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(m.cfg.URI).
		SetMaxPoolSize(m.cfg.MaxPoolSize).
		SetMinPoolSize(m.cfg.MinPoolSize).
		SetMaxConnIdleTime(m.cfg.MaxConnIdleTime).
		SetConnectTimeout(m.cfg.ConnectTimeout).
		SetServerSelectionTimeout(m.cfg.ServerSelectionTimeout).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m.client = client
	m.database = client.Database(m.cfg.Database)

	logger.WithField("database", m.cfg.Database).Info("Connected to MongoDB")
	return nil
}

// Database returns the connected database. It panics before Connect succeeds.
func (m *Mongo) Database() *mongo.Database {
	if m.database == nil {
		panic("database not initialized: call Connect first")
	}
	return m.database
}

// Collection returns a handle on the named collection.
func (m *Mongo) Collection(name string) *mongo.Collection {
	return m.Database().Collection(name)
}

// Disconnect closes the MongoDB connection
func (m *Mongo) Disconnect(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}

// HealthCheck pings the primary.
func (m *Mongo) HealthCheck(ctx context.Context) error {
	if m.client == nil {
		return errors.New("database not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return m.client.Ping(ctx, readpref.Primary())
}

// IndexSpec lists the indexes one collection needs.
type IndexSpec struct {
	Collection string
	Indexes    []mongo.IndexModel
}

// Indexes returns every index the service relies on.
func Indexes() []IndexSpec {
	return []IndexSpec{
		{
			Collection: UsersCollection,
			Indexes: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "email", Value: 1}},
					Options: options.Index().SetUnique(true).SetName("users_email_unique"),
				},
			},
		},
		{
			Collection: CredentialsCollection,
			Indexes: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "email", Value: 1}},
					Options: options.Index().SetUnique(true).SetName("credentials_email_unique"),
				},
			},
		},
		{
			Collection: MessagesCollection,
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "timestamp", Value: -1}}},
			},
		},
		{
			Collection: CallsCollection,
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "participants", Value: 1}, {Key: "status", Value: 1}}},
				{
					Keys: bson.D{{Key: "participants", Value: 1}},
					Options: options.Index().
						SetUnique(true).
						SetPartialFilterExpression(bson.D{{Key: "open", Value: true}}).
						SetName("calls_one_open_per_participant"),
				},
				{Keys: bson.D{{Key: "startTime", Value: -1}}},
			},
		},
		{
			Collection: MoodCheckinsCollection,
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: -1}}},
			},
		},
		{
			Collection: CallFeedbackCollection,
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "callId", Value: 1}, {Key: "createdAt", Value: -1}}},
			},
		},
	}
}

// EnsureIndexes creates the indexes from Indexes. Existing indexes are left alone.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, set := range Indexes() {
		names, err := m.Collection(set.Collection).Indexes().CreateMany(ctx, set.Indexes)
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", set.Collection, err)
		}
		logger.WithFields(map[string]interface{}{
			"collection": set.Collection,
			"indexes":    names,
		}).Debug("Indexes ensured")
	}
	return nil
}
