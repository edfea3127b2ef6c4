package joblock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeStore mirrors the repository's lease semantics in memory:
// insert wins when the row is absent, otherwise the claim only
// succeeds against an expired row or the caller's own row.
type fakeStore struct {
	mu   sync.Mutex
	rows map[string]fakeRow
	now  time.Time
	fail error
}

type fakeRow struct {
	lockedBy  string
	expiresAt time.Time
	ids       []int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[string]fakeRow{}, now: time.Now()}
}

func (s *fakeStore) TryAcquire(_ context.Context, jobName, instanceID string, lease time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return false, s.fail
	}
	row, ok := s.rows[jobName]
	if ok && row.expiresAt.After(s.now) && row.lockedBy != instanceID {
		return false, nil
	}
	s.rows[jobName] = fakeRow{lockedBy: instanceID, expiresAt: s.now.Add(lease)}
	return true, nil
}

func (s *fakeStore) Release(_ context.Context, jobName, instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[jobName]; ok && row.lockedBy == instanceID {
		delete(s.rows, jobName)
	}
	return nil
}

func (s *fakeStore) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for name, row := range s.rows {
		if !row.expiresAt.After(s.now) {
			delete(s.rows, name)
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) SetBookingIDs(_ context.Context, jobName, instanceID string, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[jobName]
	if !ok || row.lockedBy != instanceID || !row.expiresAt.After(s.now) {
		return errors.New("lock not held")
	}
	row.ids = ids
	s.rows[jobName] = row
	return nil
}

func (s *fakeStore) advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(d)
}

func TestManager_AcquireExclusive(t *testing.T) {
	store := newFakeStore()
	a := NewManager(store, 5*time.Minute)
	b := NewManager(store, 5*time.Minute)

	ok, err := a.Acquire(context.Background(), "escrow_release")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Acquire(context.Background(), "escrow_release")
	assert.NoError(t, err)
	assert.False(t, ok, "second instance must skip the cycle")

	// The holder itself can refresh its lease.
	ok, err = a.Acquire(context.Background(), "escrow_release")
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestManager_SelfHealsAfterExpiry(t *testing.T) {
	store := newFakeStore()
	a := NewManager(store, 5*time.Minute)
	b := NewManager(store, 5*time.Minute)

	ok, _ := a.Acquire(context.Background(), "escrow_release")
	assert.True(t, ok)

	// Holder crashes without releasing; lease outlives it.
	store.advance(6 * time.Minute)

	ok, err := b.Acquire(context.Background(), "escrow_release")
	assert.NoError(t, err)
	assert.True(t, ok, "expired lease must be stealable")
}

func TestManager_ReleaseOnlyOwn(t *testing.T) {
	store := newFakeStore()
	a := NewManager(store, 5*time.Minute)
	b := NewManager(store, 5*time.Minute)

	ok, _ := a.Acquire(context.Background(), "escrow_release")
	assert.True(t, ok)

	// A slow former holder must not drop the current holder's lock.
	store.advance(6 * time.Minute)
	ok, _ = b.Acquire(context.Background(), "escrow_release")
	assert.True(t, ok)

	assert.NoError(t, a.Release(context.Background(), "escrow_release"))

	ok, _ = a.Acquire(context.Background(), "escrow_release")
	assert.False(t, ok, "b's lock must survive a's stale release")
}

func TestManager_AcquireFailsClosed(t *testing.T) {
	store := newFakeStore()
	store.fail = errors.New("store unreachable")
	m := NewManager(store, 5*time.Minute)

	ok, err := m.Acquire(context.Background(), "escrow_release")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestManager_UpdateBookingIDsRequiresHold(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, 5*time.Minute)

	err := m.UpdateBookingIDs(context.Background(), "escrow_release", []int64{1, 2})
	assert.Error(t, err, "working set cannot be recorded without the lease")

	ok, _ := m.Acquire(context.Background(), "escrow_release")
	assert.True(t, ok)
	assert.NoError(t, m.UpdateBookingIDs(context.Background(), "escrow_release", []int64{1, 2}))
}
