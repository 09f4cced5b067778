package notebook

import (
	"context"
	"errors"
	"time"

	"github.com/Latacz1/notatnik-treningowy/internal/docstore"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

func (n *Notebook) runWriter() {
	defer n.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		// a write stuck in retries stops once closing is requested and the flush timeout passes
		select {
		case <-ctx.Done():
			return
		case <-n.quit:
		}
		timer := time.NewTimer(n.opts.FlushTimeout)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
			cancel()
		}
	}()

	for {
		select {
		case <-n.wake:
			n.writePending(ctx)
		case <-n.quit:
			n.writePending(ctx)
			return
		}
	}
}

// writePending writes the latest pending snapshot until none is left. Snapshots queued
// while a write is in flight or being retried are coalesced into the next attempt.
func (n *Notebook) writePending(ctx context.Context) {
	for {
		n.mu.Lock()
		snap := n.pending
		n.pending = nil
		n.mu.Unlock()
		if snap == nil {
			return
		}

		if !n.write(ctx, snap) {
			return
		}
	}
}

func (n *Notebook) write(ctx context.Context, snap *snapshot) bool {
	begin := time.Now()
	attempt := 0

	operation := func() error {
		// pick up anything queued since the last attempt
		n.mu.Lock()
		if n.pending != nil {
			snap = n.pending
			n.pending = nil
		}
		var expectedVersion *int64
		if n.opts.VersionCheck {
			// the base version moves with every successful write, queued snapshots may lag behind
			baseVersion := n.doc.Version
			expectedVersion = &baseVersion
		}
		n.mu.Unlock()

		attempt++
		written, err := n.store.Write(ctx, n.userID, snap.doc, expectedVersion)
		if err != nil {
			if errors.Is(err, docstore.ErrVersionConflict) {
				return backoff.Permanent(err)
			}
			return err
		}

		n.mu.Lock()
		defer n.mu.Unlock()
		// later local changes are based on the version just written
		if written.Version > n.doc.Version {
			n.doc.Version = written.Version
		}
		n.savedGen = snap.gen
		n.lastSyncedAt = n.opts.Clock()
		n.lastErr = nil
		if n.pending == nil && n.savedGen == n.gen {
			n.doc.UpdatedAt = written.UpdatedAt
			n.status = StatusSynced
		}
		n.notifyLocked()
		return nil
	}

	notify := func(err error, wait time.Duration) {
		log.WithFields(n.logFields()).Warnf("write document attempt %d failed, retry in %s: %s", attempt, wait, err)
		if n.metricsManager != nil {
			n.metricsManager.CounterDocumentWriteRetries.Inc()
		}
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(n.opts.NewBackOff(), ctx), notify)
	if n.metricsManager != nil {
		n.metricsManager.HistDocumentWriteDuration.Observe(time.Since(begin).Seconds())
	}

	switch {
	case err == nil:
		n.countWrite("ok")
		return true
	case errors.Is(err, docstore.ErrVersionConflict):
		n.countWrite("conflict")
		n.reloadAfterConflict(ctx, err)
		return true
	default:
		n.countWrite("failed")
		log.WithFields(n.logFields()).Errorf("write document failed after %d attempts: %s", attempt, err)
		n.mu.Lock()
		defer n.mu.Unlock()
		n.status = StatusFailed
		n.lastErr = err
		n.notifyLocked()
		return false
	}
}

// reloadAfterConflict replaces the local document with the stored one. Local changes
// made on top of the outdated version are dropped and the failure stays visible.
func (n *Notebook) reloadAfterConflict(ctx context.Context, conflictErr error) {
	log.WithFields(n.logFields()).Warnf("document changed elsewhere, reloading: %s", conflictErr)

	doc, err := n.store.Get(ctx, n.userID)

	n.mu.Lock()
	defer n.mu.Unlock()
	n.status = StatusFailed
	n.lastErr = conflictErr
	if err != nil {
		log.WithFields(n.logFields()).Errorf("reload after conflict: %s", err)
		n.notifyLocked()
		return
	}

	n.doc = doc.Clone()
	n.pending = nil
	n.savedGen = n.gen
	n.notifyLocked()
}

func (n *Notebook) countWrite(result string) {
	if n.metricsManager != nil {
		n.metricsManager.CounterDocumentWrites.WithLabelValues(result).Inc()
	}
}
