package txn

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrNotActive indicates the provided transaction identifier is not currently active.
var ErrNotActive = errors.New("txn: transaction not active")

// Manager coordinates transaction lifecycles and mints the monotonically
// increasing commit ids the MVCC visibility predicate compares slot headers
// against.
type Manager struct {
	mu        sync.Mutex
	nextID    ID
	active    map[ID]*Transaction
	lockMgr   *LockManager
	commitSeq uint64
}

// NewManager constructs a Manager using the provided lock manager.
func NewManager(lockMgr *LockManager) *Manager {
	return &Manager{
		nextID:  1,
		active:  make(map[ID]*Transaction),
		lockMgr: lockMgr,
	}
}

// Begin starts a new transaction, snapshotting the commit id sequence so
// the transaction's visibility predicate has a fixed horizon.
func (m *Manager) Begin() *Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	snapshot := atomic.LoadUint64(&m.commitSeq)
	tx := newTransaction(id, snapshot)
	m.active[id] = tx
	return tx
}

// Commit finalises the transaction, minting a new commit id and firing the
// transaction's registered commit hooks with it before releasing locks.
func (m *Manager) Commit(id ID) error {
	tx, err := m.remove(id)
	if err != nil {
		return err
	}
	commitID := atomic.AddUint64(&m.commitSeq, 1)
	tx.runCommitHooks(commitID)
	tx.setState(StateCommitted)
	tx.discardRollback()
	if m.lockMgr != nil {
		m.lockMgr.ReleaseAll(id)
	}
	tx.clearLocks()
	return nil
}

// Rollback aborts the transaction, running its rollback actions and releasing its locks.
func (m *Manager) Rollback(id ID) error {
	tx, err := m.remove(id)
	if err != nil {
		return err
	}
	rollbackErr := tx.runRollback()
	tx.setState(StateRolledBack)
	if m.lockMgr != nil {
		m.lockMgr.ReleaseAll(id)
	}
	tx.clearLocks()
	return rollbackErr
}

// Lookup returns the active transaction for the given identifier.
func (m *Manager) Lookup(id ID) (*Transaction, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.active[id]
	return tx, ok
}

func (m *Manager) remove(id ID) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.active[id]
	if !ok {
		return nil, ErrNotActive
	}
	delete(m.active, id)
	return tx, nil
}
