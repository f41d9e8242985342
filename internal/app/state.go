// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/a-linden/genboard-tui/internal/models"
	"github.com/a-linden/genboard-tui/internal/services/poller"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for the two query channels.
type LoadingState struct {
	Initial     bool
	Generations bool
	ModelsUsage bool
}

// State holds shared application state rendered by the tabs.
//
// The tier filter has a single writer: the overview tab cycles it, every
// other consumer only reads it.
type State struct {
	mu sync.RWMutex

	Generations poller.QueryState[models.GenerationRecord]
	ModelsUsage poller.QueryState[models.ModelUsageRecord]

	SelectedTier models.Tier

	Loading LoadingState

	LastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

func NewState() *State {
	return &State{
		SelectedTier:  models.TierAll,
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "generations":
		s.Loading.Generations = loading
	case "models":
		s.Loading.ModelsUsage = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial ||
		s.Loading.Generations ||
		s.Loading.ModelsUsage
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// SetGenerations stores the latest generations query state.
// The stored snapshot always belongs to the tier it was fetched for.
func (s *State) SetGenerations(tier models.Tier, state poller.QueryState[models.GenerationRecord]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tier != s.SelectedTier {
		// Resolved for a tier the user has already moved away from.
		return
	}

	s.Generations = state
	s.Loading.Initial = false
	s.Loading.Generations = false
	s.LastUpdated = time.Now()
}

// GetGenerations returns the current generations query state.
func (s *State) GetGenerations() poller.QueryState[models.GenerationRecord] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Generations
}

// SetModelsUsage stores the latest models-usage query state.
func (s *State) SetModelsUsage(state poller.QueryState[models.ModelUsageRecord]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ModelsUsage = state
	s.Loading.Initial = false
	s.Loading.ModelsUsage = false
	s.LastUpdated = time.Now()
}

// GetModelsUsage returns the current models-usage query state.
func (s *State) GetModelsUsage() poller.QueryState[models.ModelUsageRecord] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ModelsUsage
}

// SetSelectedTier updates the tier filter and drops the now-stale
// generations snapshot.
func (s *State) SetSelectedTier(tier models.Tier) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tier == s.SelectedTier {
		return
	}

	s.SelectedTier = tier
	s.Generations = poller.QueryState[models.GenerationRecord]{IsLoading: true}
	s.Loading.Generations = true
}

// GetSelectedTier returns the active tier filter.
func (s *State) GetSelectedTier() models.Tier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SelectedTier
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	notification := Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	}

	s.notifications = append(s.notifications, notification)

	// Keep only the last 10 notifications
	if len(s.notifications) > 10 {
		s.notifications = s.notifications[len(s.notifications)-10:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Clear expired inline when reading
	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}

	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  0,
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// GetLastUpdated returns the last time the state was updated.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}

// TimeSinceUpdate returns the duration since the last update.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}
