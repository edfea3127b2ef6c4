package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration. Rates and windows drive the
// reservation pricing and the escrow release timing; none of them are
// hardcoded law, the reference values live in the defaults below.
type Config struct {
	Port        string
	DatabaseURL string

	CommissionRate float64 // platform share of the room fee
	ServiceFeeRate float64 // guest-facing service fee on the room fee
	HostShare      float64 // host share of the room fee at release

	GuestDisputeWindow time.Duration // after check-in, before tranche 1
	HostDisputeWindow  time.Duration // after check-out, before tranche 2

	JobLockLease  time.Duration
	SweepInterval time.Duration
}

// Load reads configuration from the environment, picking up a local
// .env file if present. DATABASE_URL is the only required value.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:               envOrDefault("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		CommissionRate:     envFloat("COMMISSION_RATE", 0.10),
		ServiceFeeRate:     envFloat("SERVICE_FEE_RATE", 0.05),
		HostShare:          envFloat("HOST_SHARE", 0.90),
		GuestDisputeWindow: envDuration("GUEST_DISPUTE_WINDOW", time.Hour),
		HostDisputeWindow:  envDuration("HOST_DISPUTE_WINDOW", 2*time.Hour),
		JobLockLease:       envDuration("JOB_LOCK_LEASE", 5*time.Minute),
		SweepInterval:      envDuration("SWEEP_INTERVAL", 5*time.Minute),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is empty")
	}
	return cfg
}

func envOrDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func envFloat(name string, def float64) float64 {
	s := os.Getenv(name)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Fatalf("invalid float for %s: %q", name, s)
	}
	return v
}

func envDuration(name string, def time.Duration) time.Duration {
	s := os.Getenv(name)
	if s == "" {
		return def
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", name, s)
	}
	return v
}
