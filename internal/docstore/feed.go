package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Latacz1/notatnik-treningowy/internal/telemetry/tracing"
	"github.com/Latacz1/notatnik-treningowy/internal/trainings"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const feedChannelPrefix = "trainings-document||"

func feedChannel(userID string) string {
	return feedChannelPrefix + userID
}

// Feed pushes whole documents to every subscriber of a user, across service instances.
type Feed struct {
	redisClient *redis.Client
}

func NewFeed(redisClient *redis.Client) *Feed {
	return &Feed{
		redisClient: redisClient,
	}
}

func (f *Feed) Publish(ctx context.Context, userID string, doc trainings.Document) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "feed.publish")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	docJson, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := f.redisClient.Publish(ctx, feedChannel(userID), docJson).Err(); err != nil {
		return fmt.Errorf("publish document: %w", err)
	}
	return nil
}

// Subscribe returns once the subscription is active. Documents arrive on the returned channel
// until ctx is done or the close func is called, after which the channel is closed.
func (f *Feed) Subscribe(ctx context.Context, userID string) (<-chan trainings.Document, func(), error) {
	pubsub := f.redisClient.Subscribe(ctx, feedChannel(userID))
	// wait for confirmation, so no publish issued after this point gets lost
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe to documents feed: %w", err)
	}

	docsChan := make(chan trainings.Document)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(docsChan)

		msgChan := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case msg, ok := <-msgChan:
				if !ok {
					return
				}
				var doc trainings.Document
				if err := json.Unmarshal([]byte(msg.Payload), &doc); err != nil {
					log.Errorf("documents feed [%s], unmarshal: %s", userID, err)
					continue
				}
				select {
				case docsChan <- doc:
				case <-ctx.Done():
					return
				case <-done:
					return
				}
			}
		}
	}()

	var closeOnce sync.Once
	closeFunc := func() {
		closeOnce.Do(func() {
			close(done)
			if err := pubsub.Close(); err != nil {
				log.Errorf("documents feed [%s], close: %s", userID, err)
			}
			wg.Wait()
		})
	}

	return docsChan, closeFunc, nil
}
