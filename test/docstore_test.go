//go:build integration_test

package test

import (
	"context"
	"time"

	"github.com/Latacz1/notatnik-treningowy/internal/auth"
	"github.com/Latacz1/notatnik-treningowy/internal/calendar"
	"github.com/Latacz1/notatnik-treningowy/internal/docstore"
	"github.com/Latacz1/notatnik-treningowy/internal/trainings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestDocumentsRepo() {
	t := s.T()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	user, err := auth.NewUsersRepo(s.pgPool).Create(ctx, randomEmail(), "hash", time.Now())
	require.NoError(t, err)

	repo := docstore.NewRepo(s.pgPool)

	_, err = repo.Get(ctx, user.ID)
	require.ErrorIs(t, err, docstore.ErrDocumentNotFound)

	doc := trainings.NewDocument()
	doc.ViewMode = calendar.ViewDay

	noneYet := int64(0)
	written, err := repo.Write(ctx, user.ID, doc, &noneYet)
	require.NoError(t, err)
	assert.EqualValues(t, 1, written.Version)

	// a second create loses
	_, err = repo.Write(ctx, user.ID, doc, &noneYet)
	require.ErrorIs(t, err, docstore.ErrVersionConflict)

	stale := int64(7)
	_, err = repo.Write(ctx, user.ID, doc, &stale)
	require.ErrorIs(t, err, docstore.ErrVersionConflict)

	written, err = repo.Write(ctx, user.ID, doc, &written.Version)
	require.NoError(t, err)
	assert.EqualValues(t, 2, written.Version)

	// last writer wins
	written, err = repo.Write(ctx, user.ID, doc, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, written.Version)

	loaded, err := repo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, loaded.Version)
	assert.Equal(t, calendar.ViewDay, loaded.ViewMode)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	var found bool
	for _, userDoc := range all {
		if userDoc.UserID == user.ID {
			found = true
			assert.EqualValues(t, 3, userDoc.Document.Version)
		}
	}
	assert.True(t, found)
}

func (s *IntegrationTestSuite) TestDocumentsFeed() {
	t := s.T()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	feed := docstore.NewFeed(s.redisClient)
	userID := "feed-user"

	docs, closeFeed, err := feed.Subscribe(ctx, userID)
	require.NoError(t, err)

	doc := trainings.NewDocument()
	doc.Version = 5
	require.NoError(t, feed.Publish(ctx, "someone-else", doc))
	require.NoError(t, feed.Publish(ctx, userID, doc))

	select {
	case got := <-docs:
		assert.EqualValues(t, 5, got.Version)
	case <-ctx.Done():
		t.Fatal("no document received")
	}

	closeFeed()
	for range docs {
		// drain
	}
}
