package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"stayhub/internal/config"
	"stayhub/internal/database"
	"stayhub/internal/joblock"
	"stayhub/internal/middleware"
	"stayhub/internal/modules/booking"
	"stayhub/internal/modules/dispute"
	"stayhub/internal/modules/escrow"
	"stayhub/internal/modules/payment"
	"stayhub/internal/notification"
	"stayhub/internal/repository"
	"stayhub/internal/scheduler"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}

	bookingRepo := repository.NewBookingRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	disputeRepo := repository.NewDisputeRepository(db)
	escrowRepo := repository.NewEscrowRepository(db)
	lockRepo := repository.NewJobLockRepository(db)

	notifService := notification.NewService(notification.NewRepository(db))
	notifHandler := notification.NewHandler(notifService)

	bookingService := booking.NewService(bookingRepo, propertyRepo, notifService, cfg.CommissionRate, cfg.ServiceFeeRate)
	bookingHandler := booking.NewHandler(bookingService)

	paymentService := payment.NewService(paymentRepo, bookingRepo, bookingRepo, log.Printf)
	paymentHandler := payment.NewHandler(paymentService)

	disputeService := dispute.NewService(disputeRepo, bookingRepo, propertyRepo)
	disputeHandler := dispute.NewHandler(disputeService)

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
	escrowHandler := escrow.NewHandler(escrowService, repository.NewLedgerRepository(db))

	locks := joblock.NewManager(lockRepo, cfg.JobLockLease)
	sched := scheduler.New(locks, escrowService, cfg.SweepInterval)
	escrowService.SetClaimRecorder(sched.ClaimRecorder())
	if err := sched.Start(); err != nil {
		log.Fatalf("scheduler start failed: %v", err)
	}
	defer sched.Stop()

	r := gin.Default()
	r.Use(cors.Default())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// provider-facing webhook, no user identity
		paymentHandler.RegisterRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.Identity())
		{
			bookingHandler.RegisterRoutes(protected)
			disputeHandler.RegisterRoutes(protected)
			notifHandler.RegisterRoutes(protected)
		}

		admin := v1.Group("/admin")
		{
			escrowHandler.RegisterRoutes(admin)
		}
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
