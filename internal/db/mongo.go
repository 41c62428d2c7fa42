package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"golang.org/x/sync/errgroup"

	"github.com/yigit/academy/internal/config"
	"github.com/yigit/academy/internal/pkg/logger"
)

// Collection names, one per entity
const (
	CoursesCollection = "courses"
	WeeksCollection   = "courseWeeks"
	LessonsCollection = "lessonContents"
)

// Unique index names. Duplicate key errors are attributed by these names.
const (
	IndexCourseID     = "uniq_courseId"
	IndexWeekKey      = "uniq_course_week"
	IndexLessonKey    = "uniq_course_week_lesson"
	IndexLessonSlug   = "uniq_course_week_slug"
	defaultMongoLimit = 10 * time.Second
)

// ErrNotConnected is returned by MongoStore methods called before Connect.
var ErrNotConnected = errors.New("document store not connected")

// MongoStore is the process-wide document store handle. Connect and
// Disconnect are idempotent; the client is shared by all requests.
type MongoStore struct {
	mu             sync.RWMutex
	uri            string
	dbName         string
	connectTimeout time.Duration
	client         *mongo.Client
}

// NewMongoStore creates an unconnected store handle.
func NewMongoStore(uri, dbName string, connectTimeout time.Duration) *MongoStore {
	if connectTimeout <= 0 {
		connectTimeout = defaultMongoLimit
	}
	return &MongoStore{uri: uri, dbName: dbName, connectTimeout: connectTimeout}
}

// NewMongoStoreFromConfig reads the database section of cfg.
func NewMongoStoreFromConfig(cfg *config.Config) (*MongoStore, error) {
	timeout, err := time.ParseDuration(cfg.Database.ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connect timeout: %w", err)
	}
	return NewMongoStore(cfg.Database.URI, cfg.Database.Name, timeout), nil
}

// Connect establishes the shared client. Calling it while connected is a
// no-op. On failure no client is kept.
func (s *MongoStore) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return nil
	}

	opts := options.Client().
		ApplyURI(s.uri).
		SetConnectTimeout(s.connectTimeout).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(opts)
	if err != nil {
		return fmt.Errorf("failed to create mongo client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping mongo: %w", err)
	}

	s.client = client
	logger.Info().Str("database", s.dbName).Msg("Connected to document store")
	return nil
}

// Disconnect closes the shared client. It is a no-op when not connected.
func (s *MongoStore) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	err := s.client.Disconnect(ctx)
	s.client = nil
	if err != nil {
		return fmt.Errorf("failed to disconnect mongo: %w", err)
	}
	logger.Info().Msg("Disconnected from document store")
	return nil
}

// Connected reports whether a client is held.
func (s *MongoStore) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client != nil
}

// Ping checks the primary is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	client, err := s.Client()
	if err != nil {
		return err
	}
	return client.Ping(ctx, readpref.Primary())
}

// Client returns the shared client.
func (s *MongoStore) Client() (*mongo.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return nil, ErrNotConnected
	}
	return s.client, nil
}

// Collection returns a handle on the named collection.
func (s *MongoStore) Collection(name string) (*mongo.Collection, error) {
	client, err := s.Client()
	if err != nil {
		return nil, err
	}
	return client.Database(s.dbName).Collection(name), nil
}

// EnsureIndexes creates the unique indexes that back every business key.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		CoursesCollection: {
			{Keys: bson.D{{Key: "courseId", Value: 1}}, Options: options.Index().SetUnique(true).SetName(IndexCourseID)},
		},
		WeeksCollection: {
			{Keys: bson.D{{Key: "courseId", Value: 1}, {Key: "weekId", Value: 1}}, Options: options.Index().SetUnique(true).SetName(IndexWeekKey)},
		},
		LessonsCollection: {
			{Keys: bson.D{{Key: "courseId", Value: 1}, {Key: "weekId", Value: 1}, {Key: "lessonId", Value: 1}}, Options: options.Index().SetUnique(true).SetName(IndexLessonKey)},
			{Keys: bson.D{{Key: "courseId", Value: 1}, {Key: "weekId", Value: 1}, {Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true).SetName(IndexLessonSlug)},
		},
	}

	g, ctx := errgroup.WithContext(ctx)
	for name, models := range specs {
		name, models := name, models
		g.Go(func() error {
			coll, err := s.Collection(name)
			if err != nil {
				return err
			}
			if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
				return fmt.Errorf("failed to create indexes on %s: %w", name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("Document store indexes ensured")
	return nil
}

// SupportsTransactions reports whether the deployment is a replica set or
// sharded cluster, the only topologies with multi-document transactions.
func (s *MongoStore) SupportsTransactions(ctx context.Context) bool {
	client, err := s.Client()
	if err != nil {
		return false
	}
	var hello struct {
		SetName string `bson:"setName"`
		Msg     string `bson:"msg"`
	}
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err != nil {
		logger.Warn().Err(err).Msg("hello command failed, assuming no transaction support")
		return false
	}
	return hello.SetName != "" || hello.Msg == "isdbgrid"
}

// WithTransaction runs fn inside a session transaction. fn must use the
// context it is given.
func (s *MongoStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	client, err := s.Client()
	if err != nil {
		return err
	}
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(txCtx context.Context) (any, error) {
		return nil, fn(txCtx)
	})
	return err
}
