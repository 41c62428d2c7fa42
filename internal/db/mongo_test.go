package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMongoStoreNotConnected(t *testing.T) {
	s := NewMongoStore("mongodb://localhost:27017", "academy", time.Second)
	ctx := context.Background()

	assert.False(t, s.Connected())
	assert.NoError(t, s.Disconnect(ctx), "disconnect without connect is a no-op")
	assert.NoError(t, s.Disconnect(ctx))

	_, err := s.Collection(CoursesCollection)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.ErrorIs(t, s.Ping(ctx), ErrNotConnected)
	assert.ErrorIs(t, s.EnsureIndexes(ctx), ErrNotConnected)
	assert.False(t, s.SupportsTransactions(ctx))

	err = s.WithTransaction(ctx, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestMongoStoreConnectFailureKeepsNoClient(t *testing.T) {
	s := NewMongoStore("mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200", "academy", 300*time.Millisecond)

	err := s.Connect(context.Background())
	assert.Error(t, err)
	assert.False(t, s.Connected())
}

func TestNewMongoStoreDefaultsTimeout(t *testing.T) {
	s := NewMongoStore("mongodb://localhost:27017", "academy", 0)
	assert.Equal(t, defaultMongoLimit, s.connectTimeout)
}
