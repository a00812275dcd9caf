package window

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"sort"
	"sync"

	"github.com/Belphemur/MediaDownloader/internal/config"
)

// Surface names a UI surface owned by the coordinating process
type Surface string

const (
	Main    Surface = "main"
	Browser Surface = "browser"
	Setting Surface = "setting"
)

// EventViewReady is published when the browser surface loads a page
const EventViewReady = "viewReady"

// Publisher receives window events
type Publisher interface {
	Publish(channel string, data any)
}

// Opener hands a URL to the operating system
type Opener func(target string) error

// State is a snapshot of one surface
type State struct {
	Surface Surface `json:"surface"`
	Visible bool    `json:"visible"`
	URL     string  `json:"url,omitempty"`
}

// Manager tracks the visibility of each surface and the page loaded in the browser.
// Rendering is left to whatever presentation process subscribes to the events.
type Manager struct {
	mu       sync.RWMutex
	surfaces map[Surface]*State
	events   Publisher
	opener   Opener
}

// NewManager creates a manager with the main surface visible
func NewManager(events Publisher) *Manager {
	return &Manager{
		surfaces: map[Surface]*State{
			Main:    {Surface: Main, Visible: true},
			Browser: {Surface: Browser},
			Setting: {Surface: Setting},
		},
		events: events,
		opener: OpenExternal,
	}
}

// SetOpener replaces the external URL handler
func (m *Manager) SetOpener(o Opener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opener = o
}

func (m *Manager) get(s Surface) (*State, error) {
	st, ok := m.surfaces[s]
	if !ok {
		return nil, fmt.Errorf("unknown window %q", s)
	}
	return st, nil
}

// Show makes a surface visible
func (m *Manager) Show(s Surface) error {
	return m.setVisible(s, true)
}

// Hide hides a surface
func (m *Manager) Hide(s Surface) error {
	return m.setVisible(s, false)
}

func (m *Manager) setVisible(s Surface, visible bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, err := m.get(s)
	if err != nil {
		return err
	}
	st.Visible = visible
	logger := config.GetLogger()
	logger.Debug().Str("window", string(s)).Bool("visible", visible).Msg("Window visibility changed")
	return nil
}

// Visible reports whether a surface is shown
func (m *Manager) Visible(s Surface) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, err := m.get(s)
	return err == nil && st.Visible
}

// LoadURL points the browser surface at target and publishes viewReady
func (m *Manager) LoadURL(target string) error {
	if _, err := parseHTTPURL(target); err != nil {
		return err
	}

	m.mu.Lock()
	m.surfaces[Browser].URL = target
	m.mu.Unlock()

	if m.events != nil {
		m.events.Publish(EventViewReady, State{Surface: Browser, Visible: m.Visible(Browser), URL: target})
	}
	return nil
}

// CurrentURL returns the page loaded in the browser surface
func (m *Manager) CurrentURL() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.surfaces[Browser].URL
}

// OpenBrowser loads target when it is non-empty and shows the browser surface
func (m *Manager) OpenBrowser(target string) error {
	if target != "" {
		if err := m.LoadURL(target); err != nil {
			return err
		}
	}
	return m.Show(Browser)
}

// States returns a snapshot of every surface, ordered by name
func (m *Manager) States() []State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]State, 0, len(m.surfaces))
	for _, st := range m.surfaces {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Surface < out[j].Surface })
	return out
}

// Open hands target to the configured opener
func (m *Manager) Open(target string) error {
	if _, err := parseHTTPURL(target); err != nil {
		return err
	}
	m.mu.RLock()
	opener := m.opener
	m.mu.RUnlock()
	return opener(target)
}

// OpenExternal opens target with the platform's default handler
func OpenExternal(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("explorer", target)
	case "darwin":
		cmd = exec.Command("open", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func parseHTTPURL(target string) (*url.URL, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", target, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL %q: only http and https are supported", target)
	}
	return u, nil
}
