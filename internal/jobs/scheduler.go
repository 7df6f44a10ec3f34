package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const reconcileLockKey = "peiss:reconcile:lock"

// ConnectionSyncer repairs users whose connection flag diverged from device
// membership; satisfied by repository.UserRepository.
type ConnectionSyncer interface {
	SyncConnectionFlags(ctx context.Context) (int64, error)
}

// Scheduler runs the nightly connection reconciliation. The connect and
// disconnect operations write two rows without a transaction, so a failed
// second step leaves the flag and the member set disagreeing until this pass.
type Scheduler struct {
	cron  *cron.Cron
	users ConnectionSyncer
	lock  *redis.Client
	spec  string
	log   zerolog.Logger
}

func NewScheduler(users ConnectionSyncer, lock *redis.Client, spec string, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:  c,
		users: users,
		lock:  lock,
		spec:  spec,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.reconcileConnections); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop waits for a running reconciliation to finish, up to a bound.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) reconcileConnections() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if !s.acquireLock(ctx) {
		s.log.Debug().Msg("reconciliation already running elsewhere")
		return
	}

	repaired, err := s.users.SyncConnectionFlags(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("connection reconciliation failed")
		return
	}
	if repaired > 0 {
		s.log.Warn().Int64("repaired", repaired).Msg("connection flags diverged from device membership")
	} else {
		s.log.Info().Msg("connection flags consistent")
	}
}

// acquireLock elects a single runner across instances. Without redis the
// job runs unconditionally.
func (s *Scheduler) acquireLock(ctx context.Context) bool {
	if s.lock == nil {
		return true
	}
	ok, err := s.lock.SetNX(ctx, reconcileLockKey, time.Now().Unix(), 10*time.Minute).Result()
	if err != nil {
		s.log.Warn().Err(err).Msg("reconcile lock unavailable, running anyway")
		return true
	}
	return ok
}
