package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketzone/backend/internal/config"
	"marketzone/backend/internal/models"
	"marketzone/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		DatabaseURL:  "file:" + t.Name() + "?mode=memory&cache=shared",
		StoreTimeout: time.Second,
	}
}

func TestWithStore_ClosesDatabaseOnError(t *testing.T) {
	var opened *storage.Service
	failure := errors.New("boom")

	err := withStore(testConfig(t), func(s *storage.Service) error {
		opened = s
		return failure
	})

	require.ErrorIs(t, err, failure)
	sqlDB, err := opened.DB.DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping(), "pool must be closed after the command")
}

func TestRun_MarkReadAndPurge(t *testing.T) {
	err := withStore(testConfig(t), func(s *storage.Service) error {
		ctx := context.Background()
		require.NoError(t, storage.Migrate(s.DB))
		require.NoError(t, s.Insert(ctx, &models.Message{SenderID: "bob", ReceiverID: "alice", Content: "hi"}))
		require.NoError(t, s.Insert(ctx, &models.Message{SenderID: "alice", ReceiverID: "bob", Content: "hey"}))

		require.NoError(t, run(ctx, s, "mark-read", []string{"alice", "bob"}))
		n, err := s.CountUnread(ctx, "alice")
		require.NoError(t, err)
		assert.Zero(t, n)

		require.NoError(t, run(ctx, s, "purge", []string{"bob", "alice"}))
		msgs, err := s.ListBetween(ctx, "alice", "bob")
		require.NoError(t, err)
		assert.Empty(t, msgs)
		return nil
	})
	require.NoError(t, err)
}

func TestRun_LinkTelegramRejectsBadChatID(t *testing.T) {
	err := withStore(testConfig(t), func(s *storage.Service) error {
		return run(context.Background(), s, "link-telegram", []string{"alice", "not-a-number"})
	})

	assert.Error(t, err)
}

func TestCommands_UsageCoversEveryCommand(t *testing.T) {
	for name, cmd := range commands {
		assert.Contains(t, usage, name)
		assert.Contains(t, cmd.help, name)
	}
}
