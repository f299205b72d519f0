package state

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// StorageError reports a failed store operation.
type StorageError struct {
	Backend   string
	Operation string
	Cause     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("state storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// FileStore keeps one snapshot as pretty-printed JSON in a file. Writes go
// to a temporary sibling that is renamed into place, so a crash leaves
// either the old or the new document.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. The parent directory is
// created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the snapshot file location.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the snapshot file.
func (f *FileStore) Load() (*Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, &StorageError{Backend: "file", Operation: "read", Cause: err}
	}
	return Decode(data)
}

// Save writes the snapshot file atomically.
func (f *FileStore) Save(s *Snapshot) error {
	data, err := Encode(s)
	if err != nil {
		return &StorageError{Backend: "file", Operation: "encode", Cause: err}
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &StorageError{Backend: "file", Operation: "mkdir", Cause: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return &StorageError{Backend: "file", Operation: "create", Cause: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &StorageError{Backend: "file", Operation: "write", Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &StorageError{Backend: "file", Operation: "close", Cause: err}
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return &StorageError{Backend: "file", Operation: "rename", Cause: err}
	}
	return nil
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SessionPath returns the snapshot path for a session inside dir. IDs made
// only of [A-Za-z0-9._-] are used as the file name. Any other ID has its
// unsafe characters replaced and gets a "~" and a hash of the raw ID
// appended, so distinct IDs never share a file and none escapes dir.
func SessionPath(dir, sessionID string) string {
	name := unsafeFileChars.ReplaceAllString(sessionID, "_")
	if name != sessionID || name == "" || name == "." || name == ".." {
		sum := sha256.Sum256([]byte(sessionID))
		name = strings.Trim(name, ".") + "~" + hex.EncodeToString(sum[:8])
	}
	return filepath.Join(dir, name+".json")
}

// MemoryStore keeps a snapshot in memory. It is used for ephemeral sessions
// and in tests.
type MemoryStore struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load decodes the last saved snapshot.
func (m *MemoryStore) Load() (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil, ErrNoSnapshot
	}
	return Decode(m.data)
}

// Save encodes and keeps the snapshot.
func (m *MemoryStore) Save(s *Snapshot) error {
	data, err := Encode(s)
	if err != nil {
		return &StorageError{Backend: "memory", Operation: "encode", Cause: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	m.saves++
	return nil
}

// Saves returns how many times Save has succeeded.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// SetRaw replaces the stored document verbatim, bypassing encoding.
func (m *MemoryStore) SetRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
}
