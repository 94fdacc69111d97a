package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Flags evaluated by the portal.
const (
	PushNotifications = "push_notifications"
	SearchCache       = "search_cache"
)

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "push_notifications=25%,search_cache=on"
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
		pctRaw := strings.TrimSuffix(value, "%")
		pct, err := strconv.Atoi(pctRaw)
		if err != nil {
			return false
		}
		if pct <= 0 {
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

// Set overrides the value of one flag at runtime. Values are validated the
// same way Enabled interprets them.
func (m *Manager) Set(name, value string) error {
	key, v := normalize(name), normalize(value)
	if key == "" {
		return fmt.Errorf("flag name is required")
	}
	if !validValue(v) {
		return fmt.Errorf("invalid value %q for flag %s", value, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[key] = v
	return nil
}

// Names returns the configured flag names in order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.flags))
	for k := range m.flags {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
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
	names := m.Names()
	out := make(map[string]bool, len(names))
	for _, name := range names {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func validValue(v string) bool {
	switch v {
	case "on", "true", "1", "off", "false", "0":
		return true
	}
	if pct, ok := strings.CutSuffix(v, "%"); ok {
		n, err := strconv.Atoi(pct)
		return err == nil && n >= 0 && n <= 100
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), userID)))
	return int(h.Sum32() % 100)
}
