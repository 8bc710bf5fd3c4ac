package profile

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	core "github.com/kinjo-energy/kinjo/core/profile"
)

// JSONLStore appends profiles to a rotating JSONL file. Reads scan the
// current file and its rotated backups; the last record of an ID wins.
type JSONLStore struct {
	mu     sync.Mutex
	writer *lumberjack.Logger
	path   string
}

// NewJSONLStore creates a store with rotation options in megabytes and days.
func NewJSONLStore(path string, maxSizeMB, maxBackups, maxAgeDays int) (*JSONLStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	return &JSONLStore{writer: lj, path: path}, nil
}

// Save appends p as one line.
func (s *JSONLStore) Save(_ context.Context, p core.Profile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.writer.Write(append(b, '\n'))
	return err
}

// files returns the backups, oldest first, followed by the live file.
// lumberjack names backups <name>-<timestamp><ext>.
func (s *JSONLStore) files() ([]string, error) {
	ext := filepath.Ext(s.path)
	prefix := strings.TrimSuffix(s.path, ext)
	backups, err := filepath.Glob(prefix + "-*" + ext)
	if err != nil {
		return nil, err
	}
	sort.Strings(backups)
	return append(backups, s.path), nil
}

func (s *JSONLStore) load() (map[string]core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	files, err := s.files()
	if err != nil {
		return nil, err
	}
	out := map[string]core.Profile{}
	for _, name := range files {
		if err := readLines(name, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func readLines(name string, into map[string]core.Profile) error {
	f, err := os.Open(name)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		var p core.Profile
		if err := json.Unmarshal(scanner.Bytes(), &p); err != nil {
			continue
		}
		into[p.ID] = p
	}
	return scanner.Err()
}

// Get returns the latest record for id.
func (s *JSONLStore) Get(_ context.Context, id string) (core.Profile, error) {
	all, err := s.load()
	if err != nil {
		return core.Profile{}, err
	}
	p, ok := all[id]
	if !ok {
		return core.Profile{}, core.ErrNotFound
	}
	return p, nil
}

// List returns matching profiles, newest first.
func (s *JSONLStore) List(ctx context.Context, q core.Query) ([]core.Profile, error) {
	all, err := s.load()
	if err != nil {
		return nil, err
	}
	mem := core.NewMemoryStore()
	for _, p := range all {
		_ = mem.Save(ctx, p)
	}
	return mem.List(ctx, q)
}

// Close closes the current file.
func (s *JSONLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writer.Close()
}
