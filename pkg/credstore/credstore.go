package credstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TokenTTL is the maximum age at which a cached token is still usable
// without re-authentication.
const TokenTTL = time.Hour

// StorageError reports a persistence-medium failure. It is propagated, not
// retried; a broken store is not something callers can recover from here.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("credential store: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Credential is one company's current authentication state. The store owns
// the backing record; callers only ever see the token value.
type Credential struct {
	Company  string    `json:"company"`
	Token    string    `json:"token"`
	IssuedAt time.Time `json:"issued_at"`
}

// Store persists one credential per company key.
type Store interface {
	Save(company, token string) error
	Load(company string) (token string, ok bool, err error)
	Delete(company string) (bool, error)
}

// FileStore keeps one JSON file per company under dir, surviving process
// restarts. Each company's slot is guarded by a mutex so concurrent
// load-then-save sequences don't interleave.
type FileStore struct {
	mu  sync.Mutex
	dir string
	ttl time.Duration
	now func() time.Time
	log *zap.SugaredLogger
}

func NewFileStore(dir string, logger *zap.SugaredLogger) *FileStore {
	return &FileStore{
		dir: dir,
		ttl: TokenTTL,
		now: time.Now,
		log: logger,
	}
}

func (s *FileStore) path(company string) string {
	return filepath.Join(s.dir, fmt.Sprintf("simplybook_token_%s.json", company))
}

// Save overwrites any prior record for the company unconditionally.
func (s *FileStore) Save(company, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return &StorageError{Op: "mkdir", Path: s.dir, Err: err}
	}

	cred := Credential{
		Company:  company,
		Token:    token,
		IssuedAt: s.now(),
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return &StorageError{Op: "encode", Path: s.path(company), Err: err}
	}

	if err := os.WriteFile(s.path(company), data, 0600); err != nil {
		return &StorageError{Op: "write", Path: s.path(company), Err: err}
	}

	s.log.Debugf("Stored credential for company %s", company)
	return nil
}

// Load returns the cached token for the company. A missing slot, a corrupt
// record or an expired token all read as absent; expired records are
// removed as a side effect.
func (s *FileStore) Load(company string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(company)
}

func (s *FileStore) load(company string) (string, bool, error) {
	data, err := os.ReadFile(s.path(company))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, &StorageError{Op: "read", Path: s.path(company), Err: err}
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		// Corrupt record, treat as absent.
		s.log.Debugf("Discarding unparsable credential record for company %s: %s", company, err.Error())
		return "", false, nil
	}

	if s.now().Sub(cred.IssuedAt) >= s.ttl {
		s.log.Debugf("Cached token for company %s is older than %s, discarding", company, s.ttl)
		if _, err := s.delete(company); err != nil {
			return "", false, err
		}
		return "", false, nil
	}

	return cred.Token, true, nil
}

// Delete removes the company's slot, reporting whether one existed.
// Deleting an absent slot is a successful no-op.
func (s *FileStore) Delete(company string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delete(company)
}

func (s *FileStore) delete(company string) (bool, error) {
	err := os.Remove(s.path(company))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &StorageError{Op: "remove", Path: s.path(company), Err: err}
	}
	return true, nil
}
