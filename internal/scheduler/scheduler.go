// Package scheduler drives the escrow release sweep on a fixed
// interval. Many server instances run the same ticker concurrently;
// the job lock decides which one actually sweeps, so correctness
// never rests on a single-writer assumption.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"stayhub/internal/joblock"
	"stayhub/internal/modules/escrow"
)

const ReleaseJobName = "escrow_release"

type Sweeper interface {
	RunSweep(ctx context.Context) (*escrow.SweepResult, error)
}

type Scheduler struct {
	cron     *cron.Cron
	locks    *joblock.Manager
	sweeper  Sweeper
	interval time.Duration
}

func New(locks *joblock.Manager, sweeper Sweeper, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Scheduler{
		cron:     cron.New(),
		locks:    locks,
		sweeper:  sweeper,
		interval: interval,
	}
}

func (s *Scheduler) Start() error {
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, s.Tick); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("level=info msg=escrow scheduler started interval=%s instance=%s", s.interval, s.locks.InstanceID())
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Tick runs one scheduling cycle: expired-lock cleanup, lock
// acquisition, sweep, release. A lost acquisition just skips the
// cycle; the next tick is the retry.
func (s *Scheduler) Tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	s.locks.CleanupExpired(ctx)

	ok, err := s.locks.Acquire(ctx, ReleaseJobName)
	if err != nil {
		log.Printf("level=warn msg=lock acquire failed, skipping cycle job=%s err=%v", ReleaseJobName, err)
		return
	}
	if !ok {
		log.Printf("level=info msg=lock held elsewhere, skipping cycle job=%s", ReleaseJobName)
		return
	}
	defer func() {
		if rerr := s.locks.Release(ctx, ReleaseJobName); rerr != nil {
			log.Printf("level=warn msg=lock release failed job=%s err=%v", ReleaseJobName, rerr)
		}
	}()

	res, err := s.sweeper.RunSweep(ctx)
	if err != nil {
		log.Printf("level=error msg=escrow sweep failed err=%v", err)
		return
	}
	log.Printf("level=info msg=escrow sweep done released=%d skipped=%d errors=%d",
		len(res.Released), len(res.Skipped), len(res.Errors))
}

// ClaimRecorder returns the hook the escrow service uses to record
// its working set on the lock row before mutating anything.
func (s *Scheduler) ClaimRecorder() func(ctx context.Context, ids []int64) {
	return func(ctx context.Context, ids []int64) {
		if err := s.locks.UpdateBookingIDs(ctx, ReleaseJobName, ids); err != nil {
			log.Printf("level=warn msg=failed to record sweep working set job=%s err=%v", ReleaseJobName, err)
		}
	}
}
