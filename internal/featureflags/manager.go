// Package featureflags evaluates runtime switches for optional collaborators.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Flags consulted by the services.
const (
	AIValidation       = "ai_validation"
	EmailNotifications = "email_notifications"
)

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "ai_validation=on,email_notifications=25%"
type Manager struct {
	mu    sync.RWMutex
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config string.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := normalize(parts[0])
		value := normalize(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// fileFormat is the YAML layout of FEATURE_FLAGS_FILE:
//
//	flags:
//	  ai_validation: on
//	  email_notifications: 50%
type fileFormat struct {
	Flags map[string]string `yaml:"flags"`
}

// LoadFile merges flags from a YAML file over the current set. An empty path is a no-op.
func (m *Manager) LoadFile(path string) error {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read feature flags file: %w", err)
	}
	return m.MergeYAML(b)
}

// MergeYAML merges flags from YAML bytes over the current set.
func (m *Manager) MergeYAML(b []byte) error {
	var f fileFormat
	if err := yaml.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("parse feature flags: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range f.Flags {
		key, value := normalize(k), normalize(v)
		if key == "" || value == "" {
			continue
		}
		m.flags[key] = value
	}
	return nil
}

// Set overrides one flag.
func (m *Manager) Set(name, value string) {
	m.mu.Lock()
	m.flags[normalize(name)] = normalize(value)
	m.mu.Unlock()
}

// Enabled returns whether a flag is enabled for a given user.
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic user rollout, e.g. 25%)
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}

	m.mu.RLock()
	value, ok := m.flags[normalize(name)]
	m.mu.RUnlock()
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	if strings.HasSuffix(value, "%") {
		pct, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
		if err != nil || pct <= 0 {
			return false
		}
		if pct >= 100 {
			return true
		}
		if userID == 0 {
			return false
		}
		return rolloutBucket(name, userID) < pct
	}

	return false
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	raw := m.Raw()
	out := make(map[string]bool, len(raw))
	for name := range raw {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), userID)))
	return int(h.Sum32() % 100)
}
