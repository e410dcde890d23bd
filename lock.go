package arena

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// Locker serializes ledger mutations for one agent. The critical section
// spans the whole read-validate-append cycle: a holder re-reads the ledger
// from disk after Acquire, so two concurrent executions can never both
// settle against the same opening position.
type Locker interface {
	Acquire(signature string) error
	Release(signature string) error
}

// MemLocker is a process-local Locker. It is enough for tests and for
// callers that own the agent directory exclusively.
type MemLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMemLocker creates an empty in-process locker.
func NewMemLocker() *MemLocker {
	return &MemLocker{locks: make(map[string]*sync.Mutex)}
}

func (m *MemLocker) forSignature(signature string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[signature]
	if !ok {
		l = &sync.Mutex{}
		m.locks[signature] = l
	}
	return l
}

func (m *MemLocker) Acquire(signature string) error {
	m.forSignature(signature).Lock()
	return nil
}

func (m *MemLocker) Release(signature string) error {
	m.forSignature(signature).Unlock()
	return nil
}

// FileLocker is a Locker backed by an advisory file lock on
// ".position.lock" inside each agent directory, paired with an in-process
// mutex. The file lock keeps other processes out; the mutex keeps other
// goroutines out, since flock's Lock short-circuits when this process
// already holds the file exclusively.
type FileLocker struct {
	root string

	mu    sync.Mutex
	locks map[string]*fileLock
}

type fileLock struct {
	mu sync.Mutex
	fl *flock.Flock
}

// NewFileLocker creates a FileLocker for agent directories under root.
func NewFileLocker(root string) *FileLocker {
	return &FileLocker{root: root, locks: make(map[string]*fileLock)}
}

func (f *FileLocker) lockPath(signature string) string {
	return filepath.Join(f.root, signature, ".position.lock")
}

func (f *FileLocker) forSignature(signature string) *fileLock {
	f.mu.Lock()
	defer f.mu.Unlock()
	lk, ok := f.locks[signature]
	if !ok {
		lk = &fileLock{fl: flock.New(f.lockPath(signature))}
		f.locks[signature] = lk
	}
	return lk
}

// Acquire blocks until the agent's lock is held by this goroutine, both
// against other goroutines and against other processes.
func (f *FileLocker) Acquire(signature string) error {
	path := f.lockPath(signature)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &StorageError{Path: path, Err: err}
	}

	lk := f.forSignature(signature)
	lk.mu.Lock()
	if err := lk.fl.Lock(); err != nil {
		lk.mu.Unlock()
		return &StorageError{Path: path, Err: fmt.Errorf("acquiring lock: %w", err)}
	}
	return nil
}

// Release drops the agent's lock. Releasing a lock that is not held is an
// error.
func (f *FileLocker) Release(signature string) error {
	f.mu.Lock()
	lk, ok := f.locks[signature]
	f.mu.Unlock()
	if !ok || !lk.fl.Locked() {
		return fmt.Errorf("release %q: lock not held", signature)
	}
	if err := lk.fl.Unlock(); err != nil {
		lk.mu.Unlock()
		return &StorageError{Path: f.lockPath(signature), Err: fmt.Errorf("releasing lock: %w", err)}
	}
	lk.mu.Unlock()
	return nil
}
