// Package services provides service orchestration for the TUI.
package services

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/a-linden/genboard-tui/internal/config"
	"github.com/a-linden/genboard-tui/internal/logger"
	"github.com/a-linden/genboard-tui/internal/models"
	"github.com/a-linden/genboard-tui/internal/services/analytics"
	"github.com/a-linden/genboard-tui/internal/services/envwatch"
	"github.com/a-linden/genboard-tui/internal/services/poller"
)

type (
	// GenerationsUpdatedEvent is emitted when the generations channel
	// resolves with fresh data for the active tier.
	GenerationsUpdatedEvent struct {
		Tier  models.Tier
		State poller.QueryState[models.GenerationRecord]
	}

	// ModelsUsageUpdatedEvent is emitted when the models-usage channel
	// resolves with fresh data.
	ModelsUsageUpdatedEvent struct {
		State poller.QueryState[models.ModelUsageRecord]
	}

	// ErrorEvent is emitted once per failed resolution that moved a
	// channel into an error state.
	ErrorEvent struct {
		Channel poller.Channel
		Message string
		Err     error
	}

	// TokenReloadedEvent is emitted after the env watcher rotated the
	// analytics token.
	TokenReloadedEvent struct{}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (GenerationsUpdatedEvent) isServiceEvent() {}
func (ModelsUsageUpdatedEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()              {}
func (TokenReloadedEvent) isServiceEvent()      {}

// FailureMessage returns the user-visible notification text for a channel.
func FailureMessage(channel poller.Channel) string {
	switch channel {
	case poller.ChannelGenerations:
		return "Failed to load generations data"
	case poller.ChannelModelsUsage:
		return "Failed to load models usage data"
	default:
		return "Failed to load dashboard data"
	}
}

// tokenSink is the part of the analytics client the manager needs for
// token rotation.
type tokenSink interface {
	SetToken(token string)
}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	tokens      tokenSink
	poller      *poller.Service
	envWatch    *envwatch.Service
	notify      func(title, message string)
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
}

// NewManager creates a new service manager and starts polling.
func NewManager(cfg *config.Config) (*Manager, error) {
	client := analytics.NewClient(cfg.AnalyticsBaseURL, cfg.AnalyticsToken)

	pollConfig := poller.DefaultConfig()
	pollConfig.GenerationsInterval = cfg.GenerationsRefreshInterval
	pollConfig.ModelsInterval = cfg.ModelsRefreshInterval

	watch, err := envwatch.New(cfg.EnvPath)
	if err != nil {
		return nil, err
	}

	return newManager(client, client, pollConfig, watch), nil
}

// newManager wires an arbitrary client, which tests use to inject fakes.
func newManager(client poller.Client, tokens tokenSink, pollConfig poller.Config, watch *envwatch.Service) *Manager {
	m := &Manager{
		tokens:    tokens,
		envWatch:  watch,
		eventChan: make(chan ServiceEvent, 100),
		stopChan:  make(chan struct{}),
		notify: func(title, message string) {
			_ = beeep.Notify(title, message, "")
		},
	}

	m.poller = poller.New(client, pollConfig)

	go m.routeEvents()

	return m
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.poller.Events():
			m.handlePollerEvent(event)

		case event := <-m.envWatch.Events():
			m.handleEnvEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handlePollerEvent(event poller.Event) {
	switch event.Type {
	case poller.EventUpdated:
		switch event.Channel {
		case poller.ChannelGenerations:
			m.broadcast(GenerationsUpdatedEvent{
				Tier:  event.Tier,
				State: m.poller.Generations(),
			})
		case poller.ChannelModelsUsage:
			m.broadcast(ModelsUsageUpdatedEvent{
				State: m.poller.ModelsUsage(),
			})
		}

	case poller.EventError:
		message := FailureMessage(event.Channel)
		m.notify("Genboard", message)
		m.broadcast(ErrorEvent{
			Channel: event.Channel,
			Message: message,
			Err:     event.Err,
		})
	}
}

func (m *Manager) handleEnvEvent(event envwatch.Event) {
	if event.Err != nil {
		logger.Warn("env reload failed", "error", event.Err)
		return
	}
	m.tokens.SetToken(event.Token)
	m.broadcast(TokenReloadedEvent{})
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	// Send to main event channel
	select {
	case m.eventChan <- event:
	default:
	}

	// Send to subscribers
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Generations returns the latest generations channel state.
func (m *Manager) Generations() poller.QueryState[models.GenerationRecord] {
	return m.poller.Generations()
}

// ModelsUsage returns the latest models-usage channel state.
func (m *Manager) ModelsUsage() poller.QueryState[models.ModelUsageRecord] {
	return m.poller.ModelsUsage()
}

// Tier returns the active tier filter.
func (m *Manager) Tier() models.Tier {
	return m.poller.Tier()
}

// SetTier re-keys the generations channel and triggers an immediate fetch.
func (m *Manager) SetTier(tier models.Tier) {
	m.poller.SetTier(tier)
}

// Refresh forces an immediate fetch on both channels.
func (m *Manager) Refresh() {
	m.poller.Refresh()
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if err := m.poller.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := m.envWatch.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
