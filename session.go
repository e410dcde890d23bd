package arena

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/wsoa/arena/date"
)

// Well-known flag keys shared between the decision loop and the trade
// execution boundary.
const (
	KeySignature = "SIGNATURE"
	KeyTodayDate = "TODAY_DATE"
	KeyIfTrade   = "IF_TRADE"
	KeyLogPath   = "LOG_PATH"

	FlagTrue  = "true"
	FlagFalse = "false"
)

// DefaultFlagFile is the conventional flag store location inside a
// working tree.
const DefaultFlagFile = ".runtime_env.json"

// FlagStore is a small file-backed key-value side-channel. Callers use it
// to pass session context (current agent, current trading day, whether a
// trade happened today) across process boundaries without touching any
// ledger.
type FlagStore struct {
	path string
	mu   sync.Mutex
}

// NewFlagStore creates a store persisted at path. The file is created on
// first Set; a missing file reads as empty.
func NewFlagStore(path string) *FlagStore {
	return &FlagStore{path: path}
}

func (f *FlagStore) load() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, &StorageError{Path: f.path, Err: err}
	}
	flags := map[string]string{}
	if err := json.Unmarshal(raw, &flags); err != nil {
		return nil, &StorageError{Path: f.path, Err: err}
	}
	return flags, nil
}

// Get returns the value stored under key, and whether it is present.
func (f *FlagStore) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	flags, err := f.load()
	if err != nil {
		return "", false, err
	}
	value, ok := flags[key]
	return value, ok, err
}

// Set writes key to value, creating the file if needed. The file stays
// pretty-printed so operators can inspect and edit it by hand.
func (f *FlagStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	flags, err := f.load()
	if err != nil {
		return err
	}
	flags[key] = value
	raw, err := json.MarshalIndent(flags, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.path, append(raw, '\n'), 0o644); err != nil {
		return &StorageError{Path: f.path, Err: err}
	}
	return nil
}

// All returns a copy of every stored flag.
func (f *FlagStore) All() (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

// Today reads the session's trading day from TODAY_DATE, falling back to
// the wall clock when unset.
func (f *FlagStore) Today() (date.Date, error) {
	value, ok, err := f.Get(KeyTodayDate)
	if err != nil {
		return date.Date{}, err
	}
	if !ok || value == "" {
		return date.Today(), nil
	}
	return date.Parse(value)
}

// TradedToday reports whether a trade was recorded since IF_TRADE was last
// reset.
func (f *FlagStore) TradedToday() (bool, error) {
	value, _, err := f.Get(KeyIfTrade)
	if err != nil {
		return false, err
	}
	return value == FlagTrue, nil
}
