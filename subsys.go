// FILE: subsys.go
package dlog

import "sync"

// Subsystem describes one registered subsystem: the steady-state emit
// level, the gather level producers consult before constructing
// entries, and a display name.
type Subsystem struct {
	LogLevel    int
	GatherLevel int
	Name        string
}

// Subsystems is the read-only view the engine needs: the emit level per
// subsystem id for flush-time routing, and an iterable view for the
// crash dump's levels table.
type Subsystems interface {
	LogLevel(sub int) int
	Each(fn func(Subsystem))
}

// SubsystemMap is the default Subsystems implementation, a dense table
// indexed by subsystem id.
type SubsystemMap struct {
	mu   sync.RWMutex
	subs []Subsystem
}

func NewSubsystemMap() *SubsystemMap {
	return &SubsystemMap{}
}

// Add registers a subsystem. Ids may be added in any order, gaps are
// filled with unnamed zero-level slots.
func (m *SubsystemMap) Add(sub int, name string, logLevel, gatherLevel int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.subs) <= sub {
		m.subs = append(m.subs, Subsystem{})
	}
	m.subs[sub] = Subsystem{LogLevel: logLevel, GatherLevel: gatherLevel, Name: name}
}

// SetLogLevel updates the emit level of a registered subsystem.
func (m *SubsystemMap) SetLogLevel(sub, level int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub >= 0 && sub < len(m.subs) {
		m.subs[sub].LogLevel = level
	}
}

// SetGatherLevel updates the gather level of a registered subsystem.
func (m *SubsystemMap) SetGatherLevel(sub, level int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub >= 0 && sub < len(m.subs) {
		m.subs[sub].GatherLevel = level
	}
}

// LogLevel returns the emit level for sub, 0 for unknown ids.
func (m *SubsystemMap) LogLevel(sub int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sub >= 0 && sub < len(m.subs) {
		return m.subs[sub].LogLevel
	}
	return 0
}

// ShouldGather reports whether a producer should construct an entry of
// the given level at all.
func (m *SubsystemMap) ShouldGather(sub, level int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sub >= 0 && sub < len(m.subs) {
		return m.subs[sub].GatherLevel >= level
	}
	return false
}

// Name returns the display name for sub, "" for unknown ids.
func (m *SubsystemMap) Name(sub int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sub >= 0 && sub < len(m.subs) {
		return m.subs[sub].Name
	}
	return ""
}

// Each calls fn for every slot in id order, including the unnamed
// zero-level slots Add creates for gaps.
func (m *SubsystemMap) Each(fn func(Subsystem)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.subs {
		fn(s)
	}
}
