// Package joblock provides a lease-based mutual-exclusion primitive
// stored in the shared database, so N horizontally scaled server
// processes can run the same periodic job without double-execution.
// No external lock service is involved: the unique job_name row is
// the coordination point.
package joblock

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
)

// DefaultLease exceeds the expected worst-case job runtime by a wide
// margin while still bounding recovery time after a crash.
const DefaultLease = 5 * time.Minute

type LockStore interface {
	TryAcquire(ctx context.Context, jobName, instanceID string, lease time.Duration) (bool, error)
	Release(ctx context.Context, jobName, instanceID string) error
	DeleteExpired(ctx context.Context) (int64, error)
	SetBookingIDs(ctx context.Context, jobName, instanceID string, ids []int64) error
}

type Manager struct {
	store      LockStore
	instanceID string
	lease      time.Duration
}

func NewManager(store LockStore, lease time.Duration) *Manager {
	if lease <= 0 {
		lease = DefaultLease
	}
	host, _ := os.Hostname()
	if host == "" {
		host = "stayhub"
	}
	return &Manager{
		store:      store,
		instanceID: host + "-" + uuid.NewString(),
		lease:      lease,
	}
}

func (m *Manager) InstanceID() string { return m.instanceID }

// Acquire attempts to claim the named lease for this instance. It
// fails closed: if the store is unreachable the caller must skip the
// cycle rather than risk a double run.
func (m *Manager) Acquire(ctx context.Context, jobName string) (bool, error) {
	ok, err := m.store.TryAcquire(ctx, jobName, m.instanceID, m.lease)
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (m *Manager) Release(ctx context.Context, jobName string) error {
	return m.store.Release(ctx, jobName, m.instanceID)
}

// CleanupExpired sweeps stale lock rows. Best effort: a failure here
// only means recovery falls back to the stealing path in Acquire.
func (m *Manager) CleanupExpired(ctx context.Context) {
	n, err := m.store.DeleteExpired(ctx)
	if err != nil {
		log.Printf("level=warn msg=expired lock cleanup failed err=%v", err)
		return
	}
	if n > 0 {
		log.Printf("level=info msg=reclaimed expired job locks count=%d", n)
	}
}

// UpdateBookingIDs records the working set claimed under the lock.
func (m *Manager) UpdateBookingIDs(ctx context.Context, jobName string, ids []int64) error {
	return m.store.SetBookingIDs(ctx, jobName, m.instanceID, ids)
}
