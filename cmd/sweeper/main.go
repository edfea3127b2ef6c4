// sweeper runs one escrow release sweep and exits. Meant for
// backfills and cron-style deployments where the API process does not
// embed the scheduler. It takes the same job lock as the periodic
// path, so it is safe to run next to live instances.
package main

import (
	"context"
	"log"

	"stayhub/internal/config"
	"stayhub/internal/database"
	"stayhub/internal/joblock"
	"stayhub/internal/modules/escrow"
	"stayhub/internal/notification"
	"stayhub/internal/repository"
	"stayhub/internal/scheduler"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	bookingRepo := repository.NewBookingRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	escrowRepo := repository.NewEscrowRepository(db)
	lockRepo := repository.NewJobLockRepository(db)

	notifService := notification.NewService(notification.NewRepository(db))

	escrowService := escrow.NewService(
		escrowRepo,
		bookingRepo,
		paymentRepo,
		propertyRepo,
		notifService,
		cfg.HostShare,
		cfg.GuestDisputeWindow,
		cfg.HostDisputeWindow,
		log.Printf,
	)

	locks := joblock.NewManager(lockRepo, cfg.JobLockLease)
	ctx := context.Background()

	locks.CleanupExpired(ctx)
	ok, err := locks.Acquire(ctx, scheduler.ReleaseJobName)
	if err != nil {
		log.Fatalf("lock acquire failed: %v", err)
	}
	if !ok {
		log.Println("lock held by another instance, nothing to do")
		return
	}
	defer func() {
		if rerr := locks.Release(ctx, scheduler.ReleaseJobName); rerr != nil {
			log.Printf("level=warn msg=lock release failed err=%v", rerr)
		}
	}()

	res, err := escrowService.RunSweep(ctx)
	if err != nil {
		log.Fatalf("sweep failed: %v", err)
	}
	log.Printf("sweep completed: released=%d skipped=%d errors=%d",
		len(res.Released), len(res.Skipped), len(res.Errors))
}
