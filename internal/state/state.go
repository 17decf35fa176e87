// Package state remembers how far each document has been read.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	dbFileName = "positions.db"
	hashBytes  = 8192 // First 8KB for content hash
)

var bucketName = []byte("positions")

// ReadingState stores position for a single file
type ReadingState struct {
	WordIndex int       `json:"word_index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StateStore persists reading positions keyed by content hash.
type StateStore struct {
	db *bolt.DB
}

// NewStateStore opens the store in XDG_STATE_HOME/quickwit/
func NewStateStore() (*StateStore, error) {
	return Open(DefaultDir())
}

// Open opens or creates the store in dir.
func Open(dir string) (*StateStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	// another running instance holds the lock; give up rather than hang
	db, err := bolt.Open(filepath.Join(dir, dbFileName), 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open position store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &StateStore{db: db}, nil
}

// DefaultDir returns XDG_STATE_HOME/quickwit or ~/.local/state/quickwit
func DefaultDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "quickwit")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "quickwit")
}

// ComputeHash generates content hash for file identity
func ComputeHash(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, hashBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}

	hash := sha256.Sum256(buf[:n])
	return hex.EncodeToString(hash[:16]), nil // First 16 bytes = 32 hex chars
}

// Get returns the saved state for hash.
func (s *StateStore) Get(hash string) (ReadingState, bool, error) {
	var st ReadingState
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(hash))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &st)
	})
	return st, found, err
}

// GetPosition returns saved position for file, or 0 if not found or unreadable
func (s *StateStore) GetPosition(hash string) int {
	st, _, err := s.Get(hash)
	if err != nil {
		return 0
	}
	return st.WordIndex
}

// SetPosition saves position for file
func (s *StateStore) SetPosition(hash string, wordIndex int) error {
	data, err := json.Marshal(ReadingState{WordIndex: wordIndex, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(hash), data)
	})
}

// Clear removes saved position for file
func (s *StateStore) Clear(hash string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(hash))
	})
}

// Close releases the database file.
func (s *StateStore) Close() error {
	return s.db.Close()
}
