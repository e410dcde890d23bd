package arena

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/wsoa/arena/date"
)

const (
	ledgerFileName = "position.jsonl"
	metaFileName   = "agent_meta.json"
)

// AgentMeta describes a registered agent. It is persisted as
// agent_meta.json inside the agent's directory.
type AgentMeta struct {
	Name      string `json:"name"`
	Model     string `json:"model,omitempty"`
	Signature string `json:"signature,omitempty"`

	// Strategy identifies the trading strategy the agent runs, with an
	// optional free-form description for reports.
	Strategy            string `json:"strategy_id,omitempty"`
	StrategyDescription string `json:"strategy_description,omitempty"`
}

// Sig returns the agent's unique signature. When the metadata carries no
// explicit signature it is derived as "<name>--<model>".
func (m AgentMeta) Sig() string {
	if m.Signature != "" {
		return m.Signature
	}
	if m.Model == "" {
		return m.Name
	}
	return m.Name + "--" + m.Model
}

// Store gives access to all agent ledgers under a single root directory.
// Each agent owns one subdirectory named by its signature, holding the
// position log, its metadata and its lock file.
type Store struct {
	root   string
	locker Locker
}

// NewStore creates a store rooted at dir. Mutations are serialized per
// agent through locker.
func NewStore(dir string, locker Locker) *Store {
	return &Store{root: dir, locker: locker}
}

// DefaultStore creates a store at dir using host-level file locks, the
// setup used by the command-line tool.
func DefaultStore(dir string) *Store {
	return NewStore(dir, NewFileLocker(dir))
}

func (s *Store) agentDir(signature string) string {
	return filepath.Join(s.root, signature)
}

func (s *Store) ledgerPath(signature string) string {
	return filepath.Join(s.agentDir(signature), ledgerFileName)
}

// Exists reports whether an agent with this signature is registered.
func (s *Store) Exists(signature string) bool {
	_, err := os.Stat(s.ledgerPath(signature))
	return err == nil
}

// Signatures returns the signatures of all registered agents, sorted.
func (s *Store) Signatures() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &StorageError{Path: s.root, Err: err}
	}
	var sigs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if s.Exists(e.Name()) {
			sigs = append(sigs, e.Name())
		}
	}
	sort.Strings(sigs)
	return sigs, nil
}

// Ledger reads and returns the full position log of one agent.
func (s *Store) Ledger(signature string) (*Ledger, error) {
	path := s.ledgerPath(signature)
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("agent %q: %w", signature, ErrUnknownAgent)
		}
		return nil, &StorageError{Path: path, Err: err}
	}
	defer file.Close()

	snapshots, err := DecodeSnapshots(file)
	if err != nil {
		return nil, &StorageError{Path: path, Err: err}
	}
	l := NewLedger(signature)
	l.snapshots = snapshots
	return l, nil
}

// Meta reads an agent's metadata. A missing agent_meta.json is not an
// error: older trees predate it, so the signature alone is returned.
func (s *Store) Meta(signature string) (AgentMeta, error) {
	path := filepath.Join(s.agentDir(signature), metaFileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return AgentMeta{Name: signature, Signature: signature}, nil
		}
		return AgentMeta{}, &StorageError{Path: path, Err: err}
	}
	var meta AgentMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return AgentMeta{}, &StorageError{Path: path, Err: err}
	}
	if meta.Signature == "" {
		meta.Signature = meta.Sig()
	}
	return meta, nil
}

// Register creates a new agent: its directory, its metadata file, and a
// seed snapshot dated on, holding CASH at initialCash and every universe
// symbol at zero. A nil universe seeds DefaultSymbols. It fails if the
// signature is already taken.
func (s *Store) Register(meta AgentMeta, initialCash decimal.Decimal, symbols []string, on date.Date) error {
	if symbols == nil {
		symbols = DefaultSymbols
	}
	signature := meta.Sig()
	if s.Exists(signature) {
		return fmt.Errorf("agent %q already registered", signature)
	}
	dir := s.agentDir(signature)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &StorageError{Path: dir, Err: err}
	}

	metaPath := filepath.Join(dir, metaFileName)
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(metaPath, append(raw, '\n'), 0o644); err != nil {
		return &StorageError{Path: metaPath, Err: err}
	}

	seed := Snapshot{
		Date:     on,
		ID:       0,
		Action:   NewNoTrade(),
		Holdings: NewHoldings(initialCash, symbols),
	}
	return s.appendSnapshot(signature, seed)
}

// appendSnapshot encodes one snapshot and appends it to the agent's
// position log. Callers must hold the agent's lock for any append that
// depends on previously read state.
func (s *Store) appendSnapshot(signature string, snapshot Snapshot) error {
	path := s.ledgerPath(signature)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return &StorageError{Path: path, Err: err}
	}
	defer file.Close()
	if err := EncodeSnapshot(file, snapshot); err != nil {
		return &StorageError{Path: path, Err: err}
	}
	return nil
}

// withLock runs fn while holding the agent's exclusive lock.
func (s *Store) withLock(signature string, fn func() error) error {
	if err := s.locker.Acquire(signature); err != nil {
		return err
	}
	defer s.locker.Release(signature)
	return fn()
}

// AppendNoTrade records a bookkeeping snapshot for day on: the latest
// holdings carried forward unchanged under a "no_trade" action. It is how
// a day without decisions still lands in the equity curve.
func (s *Store) AppendNoTrade(signature string, on date.Date) (Snapshot, error) {
	var out Snapshot
	err := s.withLock(signature, func() error {
		ledger, err := s.Ledger(signature)
		if err != nil {
			return err
		}
		holdings, seq := ledger.Latest(on)
		out = Snapshot{
			Date:     on,
			ID:       seq + 1,
			Action:   NewNoTrade(),
			Holdings: holdings,
		}
		if err := ledger.validateAppend(out); err != nil {
			return err
		}
		return s.appendSnapshot(signature, out)
	})
	if err != nil {
		return Snapshot{}, err
	}
	return out, nil
}
