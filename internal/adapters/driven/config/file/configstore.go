// Package file persists settings as TOML, by default in
// ~/.reveal/config.toml. Dotted keys map onto tables: github.token is
// written as token under [github].
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/reveal-cli/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

const (
	// DefaultDirName is the config directory under the user's home.
	DefaultDirName = ".reveal"

	// FileName is the settings file inside the config directory.
	FileName = "config.toml"
)

// ConfigStore holds the decoded TOML document and rewrites the whole file
// on every change.
type ConfigStore struct {
	mu   sync.RWMutex
	path string
	root map[string]any
}

// NewConfigStore opens dir/config.toml, creating dir if needed. An empty
// dir means ~/.reveal. A missing file is an empty configuration.
func NewConfigStore(dir string) (*ConfigStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locate home directory: %w", err)
		}
		dir = filepath.Join(home, DefaultDirName)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &ConfigStore{path: filepath.Join(dir, FileName)}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ConfigStore) load() error {
	s.root = make(map[string]any)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	if err := toml.Unmarshal(data, &s.root); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}
	if s.root == nil {
		s.root = make(map[string]any)
	}
	return nil
}

// Get returns the value at a dotted key. Tables are not values.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	table, last := s.table(key, false)
	if table == nil {
		return nil, false
	}
	v, ok := table[last]
	if _, isTable := v.(map[string]any); isTable {
		return nil, false
	}
	return v, ok
}

// Set stores a value and rewrites the file. A key cannot pass through an
// existing value or replace a table.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, last := s.table(key, true)
	if table == nil {
		return fmt.Errorf("config key %q conflicts with an existing value", key)
	}
	if _, isTable := table[last].(map[string]any); isTable {
		return fmt.Errorf("config key %q names a table", key)
	}
	table[last] = value
	return s.write()
}

// Unset removes a key, drops tables it leaves empty and rewrites the file.
func (s *ConfigStore) Unset(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !prune(s.root, strings.Split(key, ".")) {
		return nil
	}
	return s.write()
}

// Keys lists every dotted key holding a value, sorted.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	walk(s.root, "", func(key string) { keys = append(keys, key) })
	slices.Sort(keys)
	return keys
}

func (s *ConfigStore) Path() string { return s.path }

// table returns the table holding the key's last segment. With create set,
// missing tables are added on the way. It returns nil when a segment is a
// value rather than a table.
func (s *ConfigStore) table(key string, create bool) (map[string]any, string) {
	parts := strings.Split(key, ".")
	node := s.root
	for _, part := range parts[:len(parts)-1] {
		child, ok := node[part]
		if !ok {
			if !create {
				return nil, ""
			}
			next := make(map[string]any)
			node[part] = next
			node = next
			continue
		}
		next, isTable := child.(map[string]any)
		if !isTable {
			return nil, ""
		}
		node = next
	}
	return node, parts[len(parts)-1]
}

// write replaces the file through a temporary sibling. The file may hold
// tokens, so it is private to the user.
func (s *ConfigStore) write() error {
	data, err := toml.Marshal(s.root)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), FileName+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

func prune(node map[string]any, parts []string) bool {
	if len(parts) == 1 {
		if _, ok := node[parts[0]]; !ok {
			return false
		}
		delete(node, parts[0])
		return true
	}
	child, ok := node[parts[0]].(map[string]any)
	if !ok || !prune(child, parts[1:]) {
		return false
	}
	if len(child) == 0 {
		delete(node, parts[0])
	}
	return true
}

func walk(node map[string]any, prefix string, fn func(string)) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := v.(map[string]any); ok {
			walk(child, key, fn)
			continue
		}
		fn(key)
	}
}
