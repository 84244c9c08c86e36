package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"lark-base-gateway/internal/config"
	"lark-base-gateway/internal/ledger"
	"lark-base-gateway/internal/metrics"
)

// LedgerSync keeps the durable processed-message ledger in step with the
// ids the gateway handles. History is loaded once at start; new ids are
// journaled in memory and flushed to the store on a cron schedule. Every
// lookup and record is best-effort: ledger trouble never blocks handling.
type LedgerSync struct {
	cron    *cron.Cron
	entryID cron.EntryID
	config  *config.LedgerConfig
	store   ledger.Store
	metrics *metrics.Metrics
	ctx     context.Context
	cancel  context.CancelFunc

	mu        sync.RWMutex
	isRunning bool
	dirty     bool
	processed map[string]struct{}
	stopped   context.Context
}

// NewLedgerSync creates a ledger sync over the given store.
func NewLedgerSync(cfg *config.LedgerConfig, store ledger.Store, metrics *metrics.Metrics) *LedgerSync {
	ctx, cancel := context.WithCancel(context.Background())

	return &LedgerSync{
		cron:      cron.New(cron.WithSeconds()),
		config:    cfg,
		store:     store,
		metrics:   metrics,
		ctx:       ctx,
		cancel:    cancel,
		processed: make(map[string]struct{}),
	}
}

// Start loads the stored history and schedules the periodic save.
func (s *LedgerSync) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("ledger sync is already running")
	}

	if s.ctx.Err() != nil {
		s.ctx, s.cancel = context.WithCancel(context.Background())
	}

	history, err := s.store.Load(s.ctx)
	if err != nil {
		logrus.Warnf("Failed to load processed-message history, starting empty: %v", err)
		history = make(map[string]struct{})
	}
	for id := range history {
		s.processed[id] = struct{}{}
	}
	s.metrics.LedgerSize.Set(float64(len(s.processed)))

	schedule := fmt.Sprintf("0 */%d * * * *", s.config.SyncIntervalMinutes)

	entryID, err := s.cron.AddFunc(schedule, s.syncLedger)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true
	s.stopped = nil

	logrus.Infof("Ledger sync started with %d known ids, interval: %d minutes", len(s.processed), s.config.SyncIntervalMinutes)
	return nil
}

// Stop flushes once more and stops the schedule.
func (s *LedgerSync) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.cron.Remove(s.entryID)
	// cron counts a dispatched job before its goroutine starts, so this
	// context covers every fired flush, not just those already running
	stopped := s.cron.Stop()
	s.isRunning = false
	s.stopped = stopped
	s.mu.Unlock()

	<-stopped.Done()
	s.syncLedger()
	s.cancel()

	logrus.Info("Ledger sync stopped")
	return nil
}

// IsRunning returns whether the sync schedule is active
func (s *LedgerSync) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Seen reports whether id was processed in an earlier run or journaled in
// this one.
func (s *LedgerSync) Seen(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.processed[id]
	return ok
}

// Record journals a handled id for the next flush.
func (s *LedgerSync) Record(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.processed[id]; ok {
		return
	}
	s.processed[id] = struct{}{}
	s.dirty = true
	s.metrics.LedgerSize.Set(float64(len(s.processed)))
}

// syncLedger flushes the merged id set to the store when it has changed.
func (s *LedgerSync) syncLedger() {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	snapshot := make(map[string]struct{}, len(s.processed))
	for id := range s.processed {
		snapshot[id] = struct{}{}
	}
	s.dirty = false
	s.mu.Unlock()

	start := time.Now()
	if err := s.store.Save(context.Background(), snapshot); err != nil {
		logrus.Errorf("Failed to save processed-message ledger: %v", err)
		s.metrics.LedgerSaveFails.Inc()
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return
	}

	logrus.Infof("Saved %d processed message ids in %v", len(snapshot), time.Since(start))
}

// RunOnce flushes the ledger immediately (for manual triggering)
func (s *LedgerSync) RunOnce() error {
	logrus.Info("Running ledger sync once")
	s.syncLedger()
	return nil
}

// GetNextRun returns the time of the next scheduled flush
func (s *LedgerSync) GetNextRun() time.Time {
	if !s.IsRunning() {
		return time.Time{}
	}

	entry := s.cron.Entry(s.entryID)
	return entry.Next
}

// GetLastRun returns the time of the last flush
func (s *LedgerSync) GetLastRun() time.Time {
	if !s.IsRunning() {
		return time.Time{}
	}

	entry := s.cron.Entry(s.entryID)
	return entry.Prev
}

// Wait blocks until every cron-dispatched flush has finished. It returns
// immediately when the sync was never stopped.
func (s *LedgerSync) Wait() {
	s.mu.RLock()
	stopped := s.stopped
	s.mu.RUnlock()

	if stopped != nil {
		<-stopped.Done()
	}
}
