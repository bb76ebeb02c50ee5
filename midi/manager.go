package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-pianoroll/debug"
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager handles hot-plug detection of MIDI keyboards
type DeviceManager struct {
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration

	match     func(name string) bool
	listPorts func() ([]string, error)
	open      func(name string) (Controller, error)
}

// NewDeviceManager creates a device manager that connects every input port
// whose name contains filter (case-insensitive). An empty filter matches
// any port that is not a loopback.
func NewDeviceManager(filter string) *DeviceManager {
	return &DeviceManager{
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
		match:       keyboardMatcher(filter),
		listPorts: func() ([]string, error) {
			ins, _, err := PortNames()
			return ins, err
		},
		open: OpenKeyboard,
	}
}

func keyboardMatcher(filter string) func(string) bool {
	filter = strings.ToLower(filter)
	return func(name string) bool {
		name = strings.ToLower(name)
		if filter != "" {
			return strings.Contains(name, filter)
		}
		return !strings.Contains(name, "through") && !strings.Contains(name, "midi thru")
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	snapshot := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		snapshot[k] = v
	}
	return snapshot
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

func (dm *DeviceManager) emit(ctx context.Context, evt DeviceEvent) {
	select {
	case dm.events <- evt:
	case <-ctx.Done():
	}
}

func (dm *DeviceManager) scan(ctx context.Context) {
	names, err := dm.listPorts()
	if err != nil {
		// Driver is hung, skip this scan
		debug.Log("midi", "scan: %v", err)
		return
	}

	seenIDs := make(map[string]bool)
	for _, name := range names {
		if !dm.match(name) {
			continue
		}
		seenIDs[name] = true

		dm.mu.RLock()
		_, exists := dm.controllers[name]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		kb, err := dm.open(name)
		if err != nil {
			debug.Log("midi", "open %s: %v", name, err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[name] = kb
		dm.mu.Unlock()

		debug.Log("midi", "connected %s", name)
		dm.emit(ctx, DeviceEvent{Type: DeviceConnected, Controller: kb, ID: name})
	}

	dm.mu.Lock()
	var removed []string
	for id, c := range dm.controllers {
		if !seenIDs[id] {
			c.Close()
			delete(dm.controllers, id)
			removed = append(removed, id)
		}
	}
	dm.mu.Unlock()

	for _, id := range removed {
		debug.Log("midi", "disconnected %s", id)
		dm.emit(ctx, DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}
