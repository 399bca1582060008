package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/KirkDiggler/remindme/internal/common/clock"
	"github.com/KirkDiggler/remindme/internal/logger"
	"github.com/KirkDiggler/remindme/internal/models"
	"github.com/KirkDiggler/remindme/internal/repositories/reminder"
	"github.com/KirkDiggler/remindme/internal/services/delivery"
	"github.com/KirkDiggler/remindme/internal/snowflake"
)

type service struct {
	reminders reminder.Repository
	delivery  delivery.Service
	clock     clock.Clock
	log       logger.Logger
	maxWait   time.Duration
	schedule  string
	loc       *time.Location

	// mu guards everything below it
	mu      sync.Mutex
	queue   entryHeap
	entries map[int64]*entry
	firing  map[int64]struct{}
	// delivered reminders whose store removal failed; never armed again
	undeleted map[int64]struct{}
	seq       uint64
	started   bool
	// set once expired reminders have been purged since start-up
	reconciled bool
	baseCtx   context.Context
	cron      *cron.Cron

	wake     chan struct{}
	stop     chan struct{}
	done     chan struct{}
	sem      chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a new scheduler. Nothing fires until Start is called.
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Reminders == nil {
		return nil, errors.New("reminder repository cannot be nil")
	}

	if cfg.Delivery == nil {
		return nil, errors.New("delivery service cannot be nil")
	}

	if cfg.Clock == nil {
		return nil, errors.New("clock cannot be nil")
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	maxWait := cfg.MaxWait
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	return &service{
		reminders: cfg.Reminders,
		delivery:  cfg.Delivery,
		clock:     cfg.Clock,
		log:       log.With(logger.String("component", "scheduler")),
		maxWait:   maxWait,
		schedule:  cfg.ResyncSchedule,
		loc:       loc,
		entries:   make(map[int64]*entry),
		firing:    make(map[int64]struct{}),
		undeleted: make(map[int64]struct{}),
		baseCtx:   context.Background(),
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		sem:       make(chan struct{}, workers),
	}, nil
}

func (s *service) Arm(r *models.Reminder) {
	if r == nil {
		return
	}

	s.mu.Lock()
	s.armLocked(r)
	s.mu.Unlock()

	s.notify()
}

// armLocked reports whether r was scheduled
func (s *service) armLocked(r *models.Reminder) bool {
	if _, ok := s.firing[r.ID]; ok {
		return false
	}
	if _, ok := s.undeleted[r.ID]; ok {
		return false
	}

	s.seq++
	if e, ok := s.entries[r.ID]; ok {
		e.reminder = r
		e.at = r.ExpiresAt
		e.seq = s.seq
		heap.Fix(&s.queue, e.index)
		return true
	}

	e := &entry{reminder: r, at: r.ExpiresAt, seq: s.seq}
	heap.Push(&s.queue, e)
	s.entries[r.ID] = e
	return true
}

func (s *service) Cancel(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return false
	}

	heap.Remove(&s.queue, e.index)
	delete(s.entries, id)
	return true
}

func (s *service) CancelGuild(guildID snowflake.ID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, e := range s.entries {
		if e.reminder.GuildID != guildID {
			continue
		}
		heap.Remove(&s.queue, e.index)
		delete(s.entries, id)
		n++
	}
	return n
}

func (s *service) Armed(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[id]
	return ok
}

func (s *service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.queue.Len()
}

// Reconcile drops reminders that expired while the process was down (they
// are not delivered late) and arms the rest
func (s *service) Reconcile(ctx context.Context) (*ReconcileOutput, error) {
	purged, err := s.reminders.RemoveExpired(ctx, &reminder.RemoveExpiredInput{Now: s.clock.Now()})
	if err != nil {
		return nil, fmt.Errorf("failed to purge expired reminders: %w", err)
	}

	armed, dropped, err := s.sync(ctx, false)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.reconciled = true
	s.mu.Unlock()

	s.log.Info("reconciled reminders",
		logger.Int64("purged", purged.Count),
		logger.Int("armed", armed),
		logger.Int("dropped", dropped))

	return &ReconcileOutput{Purged: purged.Count, Armed: armed, Dropped: dropped}, nil
}

func (s *service) Reconciled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.reconciled
}

// Resync runs a full Reconcile until one has succeeded, so reminders that
// expired during downtime are purged before anything is armed
func (s *service) Resync(ctx context.Context) (*ResyncOutput, error) {
	if !s.Reconciled() {
		out, err := s.Reconcile(ctx)
		if err != nil {
			return nil, err
		}
		return &ResyncOutput{Armed: out.Armed, Dropped: out.Dropped}, nil
	}

	s.retryUndeleted(ctx)

	armed, dropped, err := s.sync(ctx, true)
	if err != nil {
		return nil, err
	}

	if armed > 0 || dropped > 0 {
		s.log.Info("resynced reminders", logger.Int("armed", armed), logger.Int("dropped", dropped))
	}

	return &ResyncOutput{Armed: armed, Dropped: dropped}, nil
}

// sync makes the index match the store. Entries armed after the listing
// started are kept, they belong to reminders created concurrently.
func (s *service) sync(ctx context.Context, onlyMissing bool) (armed, dropped int, err error) {
	s.mu.Lock()
	startSeq := s.seq
	s.mu.Unlock()

	list, err := s.reminders.List(ctx, &reminder.ListInput{})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list reminders: %w", err)
	}

	s.mu.Lock()
	present := make(map[int64]struct{}, len(list.Reminders))
	for _, r := range list.Reminders {
		present[r.ID] = struct{}{}
		if _, ok := s.entries[r.ID]; ok && onlyMissing {
			continue
		}
		if s.armLocked(r) {
			armed++
		}
	}

	for id, e := range s.entries {
		if _, ok := present[id]; ok || e.seq > startSeq {
			continue
		}
		heap.Remove(&s.queue, e.index)
		delete(s.entries, id)
		dropped++
	}
	s.mu.Unlock()

	s.notify()
	return armed, dropped, nil
}

func (s *service) retryUndeleted(ctx context.Context) {
	s.mu.Lock()
	ids := make([]int64, 0, len(s.undeleted))
	for id := range s.undeleted {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		if _, err := s.reminders.Remove(ctx, &reminder.RemoveInput{ID: id}); err != nil {
			s.log.Warn("still unable to remove delivered reminder", logger.Int64("reminder_id", id), logger.Error(err))
			continue
		}
		s.mu.Lock()
		delete(s.undeleted, id)
		s.mu.Unlock()
	}
}

// Start runs the timer loop and, when configured, the periodic resync
func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errors.New("scheduler already started")
	}

	// Deliveries outlive the caller's context; Stop ends them
	s.baseCtx = context.WithoutCancel(ctx)

	if s.schedule != "" {
		s.cron = cron.New(cron.WithLocation(s.loc))
		_, err := s.cron.AddFunc(s.schedule, func() {
			if _, err := s.Resync(s.baseCtx); err != nil {
				s.log.Error("resync failed", logger.Error(err))
			}
		})
		if err != nil {
			return fmt.Errorf("invalid resync schedule %q: %w", s.schedule, err)
		}
		s.cron.Start()
	}

	s.started = true
	go s.loop()

	s.log.Info("scheduler started", logger.Int("pending", s.queue.Len()), logger.Int("workers", cap(s.sem)))
	return nil
}

// Stop halts the loop and waits for in-flight deliveries until ctx is done
func (s *service) Stop(ctx context.Context) error {
	s.mu.Lock()
	started := s.started
	c := s.cron
	s.mu.Unlock()

	if !started {
		return nil
	}

	s.stopOnce.Do(func() { close(s.stop) })

	idle := make(chan struct{})
	go func() {
		if c != nil {
			<-c.Stop().Done()
		}
		<-s.done
		s.wg.Wait()
		close(idle)
	}()

	select {
	case <-idle:
		s.log.Info("scheduler stopped", logger.Int("pending", s.Pending()))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler did not stop in time: %w", ctx.Err())
	}
}

func (s *service) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *service) loop() {
	defer close(s.done)

	timer := time.NewTimer(s.maxWait)
	defer timer.Stop()

	for {
		due, wait := s.collectDue()
		for _, e := range due {
			s.dispatch(e.reminder)
		}

		timer.Reset(wait)

		select {
		case <-s.stop:
			return
		case <-s.wake:
		case <-timer.C:
		}
	}
}

// collectDue pops every entry due by now, marks it firing and returns how
// long to sleep until the next one
func (s *service) collectDue() ([]*entry, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()

	var due []*entry
	for s.queue.Len() > 0 && !s.queue[0].at.After(now) {
		e := heap.Pop(&s.queue).(*entry)
		delete(s.entries, e.reminder.ID)
		s.firing[e.reminder.ID] = struct{}{}
		due = append(due, e)
	}

	wait := s.maxWait
	if s.queue.Len() > 0 {
		if d := s.queue[0].at.Sub(now); d < wait {
			wait = d
		}
	}

	return due, wait
}

func (s *service) dispatch(r *models.Reminder) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		select {
		case s.sem <- struct{}{}:
		case <-s.stop:
			// Still in the store, the next start arms it again
			s.release(r.ID)
			return
		}
		defer func() { <-s.sem }()

		s.fire(s.baseCtx, r)
	}()
}

// fire delivers a reminder and removes it from the store whatever the
// outcome, so it never fires twice
func (s *service) fire(ctx context.Context, armed *models.Reminder) {
	defer s.release(armed.ID)

	log := s.log.With(logger.Int64("reminder_id", armed.ID), logger.Stringer("guild_id", armed.GuildID))

	r, err := s.reminders.Get(ctx, &reminder.GetInput{ID: armed.ID})
	switch {
	case err != nil:
		log.Warn("failed to re-read reminder, delivering armed copy", logger.Error(err))
		r = armed
	case r == nil:
		log.Debug("reminder deleted before firing")
		return
	}

	if err := s.delivery.Send(ctx, &delivery.SendInput{Reminder: r}); err != nil {
		var deliveryErr *delivery.DeliveryError
		if errors.As(err, &deliveryErr) && deliveryErr.Permanent {
			log.Warn("reminder undeliverable, dropping it", logger.Error(err))
		} else {
			log.Error("reminder delivery failed", logger.Error(err))
		}
	}

	if _, err := s.reminders.Remove(ctx, &reminder.RemoveInput{ID: r.ID}); err != nil {
		log.Error("failed to remove fired reminder", logger.Error(err))
		s.mu.Lock()
		s.undeleted[r.ID] = struct{}{}
		s.mu.Unlock()
	}
}

func (s *service) release(id int64) {
	s.mu.Lock()
	delete(s.firing, id)
	s.mu.Unlock()
}
