package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/a-linden/genboard-tui/internal/models"
	"github.com/a-linden/genboard-tui/internal/services"
	"github.com/a-linden/genboard-tui/internal/services/poller"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// GenerationsUpdatedMsg carries a resolved generations query state.
type GenerationsUpdatedMsg struct {
	Tier  models.Tier
	State poller.QueryState[models.GenerationRecord]
}

// ModelsUsageUpdatedMsg carries a resolved models-usage query state.
type ModelsUsageUpdatedMsg struct {
	State poller.QueryState[models.ModelUsageRecord]
}

// TierChangedMsg signals that the tier filter was re-keyed.
type TierChangedMsg struct {
	Tier models.Tier
}

// TokenReloadedMsg signals that the analytics token was rotated.
type TokenReloadedMsg struct{}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // "all", "generations", "models"
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearNotificationsMsg requests clearing all notifications.
type ClearNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// ErrorEventMsg wraps an error event from services.
type ErrorEventMsg struct {
	Event services.ErrorEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// DelayedMsg wraps a message to be sent after a delay.
type DelayedMsg struct {
	Delay time.Duration
	Msg   tea.Msg
}
