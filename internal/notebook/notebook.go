package notebook

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Latacz1/notatnik-treningowy/internal/calendar"
	"github.com/Latacz1/notatnik-treningowy/internal/telemetry/metrics"
	"github.com/Latacz1/notatnik-treningowy/internal/trainings"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=notebook_mocks_test.go -package=notebook_test

type documentStore interface {
	Get(ctx context.Context, userID string) (trainings.Document, error)
	Write(ctx context.Context, userID string, doc trainings.Document, expectedVersion *int64) (trainings.Document, error)
	Subscribe(ctx context.Context, userID string) (<-chan trainings.Document, func(), error)
}

var ErrClosed = errors.New("notebook closed")

type SyncStatus string

const (
	StatusSynced SyncStatus = "synced"
	StatusSaving SyncStatus = "saving"
	StatusFailed SyncStatus = "failed"
)

type SyncState struct {
	Status       SyncStatus `json:"status"`
	Error        string     `json:"error,omitempty"`
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty"`
}

// State is what clients see: the local document and how far it is from being stored.
type State struct {
	Document trainings.Document `json:"document"`
	Sync     SyncState          `json:"sync"`
}

type Options struct {
	// VersionCheck makes writes fail on a concurrent change instead of overwriting it.
	VersionCheck bool
	// RetryMaxElapsed bounds the retries of a single write, 0 uses the backoff default.
	RetryMaxElapsed time.Duration
	// FlushTimeout bounds the last write issued when the notebook closes.
	FlushTimeout time.Duration
	Clock        func() time.Time
	// NewBackOff overrides the retry policy, mainly for tests.
	NewBackOff func() backoff.BackOff
}

type snapshot struct {
	doc trainings.Document
	gen uint64
}

// Notebook is the in-memory copy of one user's document. Mutations are applied locally and
// returned at once, while a single writer goroutine persists them in the order they were made.
// Documents pushed by the store replace the local copy wholesale.
type Notebook struct {
	userID         string
	store          documentStore
	metricsManager *metrics.Manager
	opts           Options

	mu sync.Mutex
	// doc.Version is the version of the stored document the local copy is based on
	doc          trainings.Document
	gen          uint64
	savedGen     uint64
	pending      *snapshot
	status       SyncStatus
	lastErr      error
	lastSyncedAt time.Time
	closed       bool
	listeners    map[uint64]chan State
	nextListener uint64

	wake      chan struct{}
	quit      chan struct{}
	closeFeed func()
	wg        sync.WaitGroup
}

func New(userID string, store documentStore, metricsManager *metrics.Manager, opts Options) *Notebook {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.FlushTimeout <= 0 {
		opts.FlushTimeout = 10 * time.Second
	}
	if opts.NewBackOff == nil {
		maxElapsed := opts.RetryMaxElapsed
		opts.NewBackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			if maxElapsed > 0 {
				b.MaxElapsedTime = maxElapsed
			}
			return b
		}
	}

	return &Notebook{
		userID:         userID,
		store:          store,
		metricsManager: metricsManager,
		opts:           opts,
		doc:            trainings.NewDocument(),
		status:         StatusSynced,
		listeners:      map[uint64]chan State{},
		wake:           make(chan struct{}, 1),
		quit:           make(chan struct{}),
	}
}

// Open loads the stored document and starts following the user's live feed and the writer.
func (n *Notebook) Open(ctx context.Context) error {
	doc, err := n.store.Get(ctx, n.userID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	// the feed outlives the request that opened the notebook
	feedCtx, cancelFeed := context.WithCancel(context.Background())
	pushes, closeFeed, err := n.store.Subscribe(feedCtx, n.userID)
	if err != nil {
		cancelFeed()
		return fmt.Errorf("subscribe: %w", err)
	}

	n.mu.Lock()
	n.doc = doc
	n.lastSyncedAt = n.opts.Clock()
	n.closeFeed = func() {
		cancelFeed()
		closeFeed()
	}
	n.mu.Unlock()

	// a change stored between the load and the subscription would be missed otherwise
	if latest, err := n.store.Get(ctx, n.userID); err == nil {
		n.applyPush(latest)
	}

	n.wg.Add(2)
	go n.followFeed(pushes)
	go n.runWriter()
	return nil
}

func (n *Notebook) UserID() string {
	return n.userID
}

// Close stops the feed and the writer. A change not stored yet gets one last write attempt.
func (n *Notebook) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	closeFeed := n.closeFeed
	for id, ch := range n.listeners {
		close(ch)
		delete(n.listeners, id)
	}
	n.mu.Unlock()

	close(n.quit)
	if closeFeed != nil {
		closeFeed()
	}
	n.wg.Wait()
}

func (n *Notebook) Document() trainings.Document {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.doc.Clone()
}

func (n *Notebook) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stateLocked()
}

func (n *Notebook) stateLocked() State {
	st := State{
		Document: n.doc.Clone(),
		Sync:     SyncState{Status: n.status},
	}
	if n.lastErr != nil && n.status == StatusFailed {
		st.Sync.Error = n.lastErr.Error()
	}
	if !n.lastSyncedAt.IsZero() {
		lastSyncedAt := n.lastSyncedAt
		st.Sync.LastSyncedAt = &lastSyncedAt
	}
	return st
}

// Day returns the records stored under dateKey, never nil.
func (n *Notebook) Day(dateKey string) []trainings.TrainingRecord {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]trainings.TrainingRecord{}, trainings.Day(n.doc.Trainings, dateKey)...)
}

// AddRecord stores rec under dateKey with a fresh id and returns it as stored.
func (n *Notebook) AddRecord(dateKey string, rec trainings.TrainingRecord) (trainings.TrainingRecord, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return trainings.TrainingRecord{}, ErrClosed
	}

	now := n.opts.Clock()
	rec.ID = trainings.NextID(n.doc.Trainings, now)
	if rec.Timestamp.IsZero() {
		rec.Timestamp = now
	}

	updated, err := trainings.AddRecord(n.doc.Trainings, dateKey, rec)
	if err != nil {
		return trainings.TrainingRecord{}, err
	}

	n.commitLocked(updated, n.doc.ViewMode, "add")
	day := updated[dateKey]
	return day[len(day)-1], nil
}

func (n *Notebook) UpdateRecord(id int64, rec trainings.TrainingRecord) (trainings.TrainingRecord, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return trainings.TrainingRecord{}, ErrClosed
	}

	updated, err := trainings.UpdateRecord(n.doc.Trainings, id, rec)
	if err != nil {
		return trainings.TrainingRecord{}, err
	}

	n.commitLocked(updated, n.doc.ViewMode, "update")
	dateKey, _ := trainings.FindDateKey(updated, id)
	for _, r := range updated[dateKey] {
		if r.ID == id {
			return r, nil
		}
	}
	return trainings.TrainingRecord{}, trainings.ErrRecordNotFound
}

func (n *Notebook) DeleteRecord(dateKey string, id int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return ErrClosed
	}

	updated, err := trainings.DeleteRecord(n.doc.Trainings, dateKey, id)
	if err != nil {
		return err
	}

	n.commitLocked(updated, n.doc.ViewMode, "delete")
	return nil
}

func (n *Notebook) SetViewMode(mode calendar.ViewMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("invalid view mode [%s]", mode)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return ErrClosed
	}
	if n.doc.ViewMode == mode {
		return nil
	}

	n.commitLocked(n.doc.Trainings, mode, "view-mode")
	return nil
}

// Retry schedules another write of the local document after a failed sync.
func (n *Notebook) Retry() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed || n.savedGen == n.gen {
		return
	}
	n.enqueueLocked()
	n.notifyLocked()
}

func (n *Notebook) commitLocked(store trainings.Store, mode calendar.ViewMode, op string) {
	n.doc.Trainings = store
	n.doc.ViewMode = mode
	n.gen++
	n.enqueueLocked()
	n.notifyLocked()

	if n.metricsManager != nil {
		n.metricsManager.CounterTrainings.WithLabelValues(op).Inc()
	}
}

func (n *Notebook) enqueueLocked() {
	n.pending = &snapshot{doc: n.doc.Clone(), gen: n.gen}
	n.status = StatusSaving
	select {
	case n.wake <- struct{}{}:
	default:
	}
}

func (n *Notebook) followFeed(pushes <-chan trainings.Document) {
	defer n.wg.Done()
	for doc := range pushes {
		n.applyPush(doc)
	}
}

// applyPush replaces the local document with a newer stored one. With unsaved local
// changes the local copy is kept: the pending write overwrites the stored document,
// or fails on the version check and reloads it.
func (n *Notebook) applyPush(doc trainings.Document) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed || doc.Version <= n.doc.Version {
		return
	}

	if n.savedGen != n.gen {
		if !n.opts.VersionCheck {
			n.doc.Version = doc.Version
		}
		return
	}

	n.doc = doc.Clone()
	if n.doc.Trainings == nil {
		n.doc.Trainings = trainings.Store{}
	}
	n.status = StatusSynced
	n.lastErr = nil
	n.lastSyncedAt = n.opts.Clock()
	n.notifyLocked()
}

// Watch sends the current state and then every change of it. Slow readers only get the latest state.
// The channel is closed when ctx is done or the notebook closes.
func (n *Notebook) Watch(ctx context.Context) <-chan State {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan State, 1)
	if n.closed {
		close(ch)
		return ch
	}

	id := n.nextListener
	n.nextListener++
	n.listeners[id] = ch
	ch <- n.stateLocked()

	go func() {
		select {
		case <-ctx.Done():
		case <-n.quit:
			return
		}
		n.mu.Lock()
		defer n.mu.Unlock()
		if _, ok := n.listeners[id]; ok {
			close(ch)
			delete(n.listeners, id)
		}
	}()

	return ch
}

func (n *Notebook) notifyLocked() {
	if len(n.listeners) == 0 {
		return
	}
	st := n.stateLocked()
	for _, ch := range n.listeners {
		select {
		case ch <- st:
		default:
			// replace the unread state
			select {
			case <-ch:
			default:
			}
			ch <- st
		}
	}
}

func (n *Notebook) logFields() log.Fields {
	return log.Fields{"user": n.userID}
}
