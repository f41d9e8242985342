package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/a-linden/genboard-tui/internal/models"
	"github.com/a-linden/genboard-tui/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadSnapshotsCmd returns a command that seeds the UI from the poller's
// current query states.
func loadSnapshotsCmd(mgr *services.Manager) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			return GenerationsUpdatedMsg{
				Tier:  mgr.Tier(),
				State: mgr.Generations(),
			}
		},
		func() tea.Msg {
			return ModelsUsageUpdatedMsg{State: mgr.ModelsUsage()}
		},
	)
}

// setTierCmd returns a command that re-keys the generations channel.
func setTierCmd(mgr *services.Manager, tier models.Tier) tea.Cmd {
	return func() tea.Msg {
		mgr.SetTier(tier)
		return TierChangedMsg{Tier: tier}
	}
}

// refreshCmd returns a command that forces an immediate fetch on both channels.
func refreshCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		mgr.Refresh()
		return StartLoadingMsg{Resource: "generations"}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationSuccess,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationError,
			Message:  message,
			Duration: LongNotificationDuration,
		}
	}
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationInfo,
			Message:  message,
			Duration: QuickNotificationDuration,
		}
	}
}

// delayedCmd returns a command that sends a message after a delay.
func delayedCmd(delay time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return msg
	})
}

// Commands provides a public interface to the command functions.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// Tick returns a tick command with the specified interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tickCmd(interval)
}

// DefaultTick returns a tick command with the default interval.
func (c *Commands) DefaultTick() tea.Cmd {
	return defaultTickCmd()
}

// LoadSnapshots returns a command that seeds the UI from current state.
func (c *Commands) LoadSnapshots() tea.Cmd {
	return loadSnapshotsCmd(c.manager)
}

// SetTier returns a command that re-keys the generations channel.
func (c *Commands) SetTier(tier models.Tier) tea.Cmd {
	return setTierCmd(c.manager, tier)
}

// Refresh returns a command that forces an immediate fetch.
func (c *Commands) Refresh() tea.Cmd {
	return refreshCmd(c.manager)
}

// SubscribeToServices returns a command that subscribes to service events.
func (c *Commands) SubscribeToServices() tea.Cmd {
	return subscribeToServicesCmd(c.manager)
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// ClearNotification returns a command that removes a notification after a delay.
func (c *Commands) ClearNotification(id string, delay time.Duration) tea.Cmd {
	return clearNotificationCmd(id, delay)
}

// Delayed returns a command that sends a message after a delay.
func (c *Commands) Delayed(delay time.Duration, msg tea.Msg) tea.Cmd {
	return delayedCmd(delay, msg)
}

// Quit returns a command that quits the application.
func (c *Commands) Quit() tea.Cmd {
	return tea.Quit
}
