package docstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Latacz1/notatnik-treningowy/internal/trainings"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=store_mocks_test.go -package=docstore_test

type documentsRepo interface {
	Get(ctx context.Context, userID string) (trainings.Document, error)
	Write(ctx context.Context, userID string, doc trainings.Document, expectedVersion *int64) (trainings.Document, error)
	ListAll(ctx context.Context) ([]UserDocument, error)
}

type documentsFeed interface {
	Publish(ctx context.Context, userID string, doc trainings.Document) error
	Subscribe(ctx context.Context, userID string) (<-chan trainings.Document, func(), error)
}

// Store is the persistent document store: postgres for durability, an in-process cache
// for reads and a redis feed to push every change to all open notebooks of the user.
type Store struct {
	repo  documentsRepo
	cache *Cache
	feed  documentsFeed
}

func NewStore(repo documentsRepo, cache *Cache, feed documentsFeed) *Store {
	return &Store{
		repo:  repo,
		cache: cache,
		feed:  feed,
	}
}

// Get returns the user's document. A user without one gets an empty document with version 0.
func (s *Store) Get(ctx context.Context, userID string) (trainings.Document, error) {
	if doc, found := s.cache.Get(userID); found {
		return doc, nil
	}

	doc, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrDocumentNotFound) {
		return trainings.NewDocument(), nil
	}
	if err != nil {
		return trainings.Document{}, err
	}

	s.cache.Set(userID, doc)
	return doc, nil
}

// Write persists the whole document and pushes it to subscribers, the writer included.
func (s *Store) Write(
	ctx context.Context,
	userID string,
	doc trainings.Document,
	expectedVersion *int64,
) (trainings.Document, error) {
	written, err := s.repo.Write(ctx, userID, doc, expectedVersion)
	if err != nil {
		if errors.Is(err, ErrVersionConflict) {
			s.cache.Delete(userID)
		}
		return trainings.Document{}, fmt.Errorf("write [%s]: %w", userID, err)
	}

	s.cache.Delete(userID)
	s.cache.Set(userID, written)

	// the document is stored at this point, subscribers catch up on their next load
	if err := s.feed.Publish(ctx, userID, written); err != nil {
		log.Errorf("publish document for %s: %s", userID, err)
	}
	return written, nil
}

// Subscribe delivers every document written for the user from now on, until ctx is done
// or the returned close func is called. Received documents also refresh the local cache.
func (s *Store) Subscribe(ctx context.Context, userID string) (<-chan trainings.Document, func(), error) {
	feedChan, closeFeed, err := s.feed.Subscribe(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	done := make(chan struct{})
	var closeOnce sync.Once
	closeFunc := func() {
		closeOnce.Do(func() {
			close(done)
			closeFeed()
		})
	}

	docsChan := make(chan trainings.Document)
	go func() {
		defer close(docsChan)
		defer closeFunc()

		for doc := range feedChan {
			s.cache.Set(userID, doc)
			select {
			case docsChan <- doc:
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	return docsChan, closeFunc, nil
}

func (s *Store) ListAll(ctx context.Context) ([]UserDocument, error) {
	return s.repo.ListAll(ctx)
}
