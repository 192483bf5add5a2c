// Package client manages the Wayland connection and registry
// enumeration for the capture protocol bindings.
//
// The embedding application owns exactly one Client per compositor
// session; every binding package (screencopy, toplevel_management,
// toplevel_info, workspaces) binds its globals through it and shares
// its event queue.
package client

import (
	"fmt"
	"sync"

	"github.com/bnema/wlturbo/wl"

	"github.com/MalpenZibo/libwlcapture-go/internal/logger"
)

type globalInfo struct {
	iface   string
	version uint32
}

// Client owns the display connection and the registry global table.
type Client struct {
	display  *wl.Display
	registry *wl.Registry
	context  *wl.Context

	mu      sync.Mutex
	globals map[uint32]globalInfo
}

// NewClient connects to the Wayland display and performs the single
// startup roundtrip that populates the global table.
func NewClient() (*Client, error) {
	display, err := wl.Connect("")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Wayland: %w", err)
	}

	client := &Client{
		display: display,
		context: display.Context(),
		globals: make(map[uint32]globalInfo),
	}

	registry := display.GetRegistry()
	client.registry = registry

	// Registry listeners must be in place before the roundtrip, or the
	// initial announcement burst is lost.
	registry.AddGlobalHandler(client)
	registry.AddGlobalRemoveHandler(client)

	if err := display.Roundtrip(); err != nil {
		return nil, fmt.Errorf("failed to get initial globals: %w", err)
	}

	return client, nil
}

// HandleRegistryGlobal implements wl.RegistryGlobalHandler
func (c *Client) HandleRegistryGlobal(event wl.RegistryGlobalEvent) {
	logger.Debug("global announced", "interface", event.Interface, "version", event.Version, "name", event.Name)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.globals[event.Name] = globalInfo{iface: event.Interface, version: event.Version}
}

// HandleRegistryGlobalRemove implements wl.RegistryGlobalRemoveHandler
func (c *Client) HandleRegistryGlobalRemove(event wl.RegistryGlobalRemoveEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.globals, event.Name)
}

// Global reports the registry name and advertised version of a global
// interface, or ok=false if the compositor does not advertise it.
func (c *Client) Global(iface string) (uint32, uint32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for name, info := range c.globals {
		if info.iface == iface {
			return name, info.version, true
		}
	}
	return 0, 0, false
}

// Bind binds the named global at the given version to the proxy.
func (c *Client) Bind(name uint32, iface string, version uint32, proxy wl.Proxy) error {
	return c.registry.Bind(name, iface, version, proxy)
}

// Globals returns a snapshot of every advertised global as an
// interface -> version map.
func (c *Client) Globals() map[string]uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make(map[string]uint32, len(c.globals))
	for _, info := range c.globals {
		snapshot[info.iface] = info.version
	}
	return snapshot
}

// Context returns the Wayland context
func (c *Client) Context() *wl.Context {
	return c.context
}

// Display returns the Wayland display
func (c *Client) Display() *wl.Display {
	return c.display
}

// Dispatch reads and dispatches one batch of events.
func (c *Client) Dispatch() error {
	return c.display.Dispatch()
}

// Roundtrip blocks until the compositor has processed all pending
// requests.
func (c *Client) Roundtrip() error {
	return c.display.Roundtrip()
}

// Close closes the Wayland connection
func (c *Client) Close() error {
	if c.context != nil {
		return c.context.Close()
	}
	return nil
}
