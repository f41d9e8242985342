package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/a-linden/genboard-tui/internal/models"
	"github.com/a-linden/genboard-tui/internal/services"
	"github.com/a-linden/genboard-tui/internal/services/poller"
)

func TestNewModel(t *testing.T) {
	model := NewModel(nil)
	if model == nil {
		t.Fatal("NewModel returned nil")
	}
	if model.state == nil {
		t.Error("State should be initialized")
	}
	if model.activeTab != TabOverview {
		t.Error("Default tab should be Overview")
	}
	if len(model.tabs) != 3 {
		t.Errorf("Should have 3 tabs placeholder, got %d", len(model.tabs))
	}
}

func TestModel_Init(t *testing.T) {
	model := NewModel(nil)
	cmd := model.Init()
	if cmd == nil {
		t.Error("Init returned nil command")
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	model := NewModel(nil)
	msg := tea.WindowSizeMsg{Width: 100, Height: 50}

	newModel, _ := model.Update(msg)

	m, ok := newModel.(*Model)
	if !ok {
		t.Fatal("Update returned wrong model type")
	}

	if m.width != 100 {
		t.Errorf("Width = %d, want 100", m.width)
	}
	if m.height != 50 {
		t.Errorf("Height = %d, want 50", m.height)
	}
	if !m.ready {
		t.Error("Model should be ready after WindowSizeMsg")
	}
}

func TestModel_Update_TabSwitch(t *testing.T) {
	model := NewModel(nil)
	model.ready = true
	model.width = 100
	model.height = 50

	msg := TabSwitchMsg{Tab: TabModels}
	newModel, _ := model.Update(msg)
	m := newModel.(*Model)

	if m.activeTab != TabModels {
		t.Errorf("ActiveTab = %v, want Models", m.activeTab)
	}

	keyMsg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}}
	model.handleKeyMsg(keyMsg)
	if model.activeTab != TabInfo {
		t.Errorf("ActiveTab = %v, want Info after key '3'", model.activeTab)
	}
}

func TestModel_Update_Tick(t *testing.T) {
	model := NewModel(nil)
	msg := TickMsg{Time: time.Now()}

	_, cmd := model.Update(msg)
	if cmd == nil {
		t.Error("TickMsg should return a command (next tick)")
	}
}

func TestModel_View(t *testing.T) {
	model := NewModel(nil)

	// Not ready
	view := model.View()
	if !strings.Contains(view, "Loading...") {
		t.Error("View should show Loading when not ready")
	}

	// Ready
	model.ready = true
	model.width = 80
	model.height = 24

	view = model.View()
	if !strings.Contains(view, "Overview") {
		t.Error("View should show Overview tab")
	}
	if !strings.Contains(view, "not yet implemented") {
		t.Error("View should show placeholder text")
	}
}

func TestModel_Help(t *testing.T) {
	model := NewModel(nil)
	model.ready = true
	model.width = 80
	model.height = 24

	model.Update(ToggleHelpMsg{})
	if !model.showHelp {
		t.Error("showHelp should be true")
	}

	view := model.View()
	if !strings.Contains(view, "Keyboard Shortcuts") {
		t.Error("View should show help modal")
	}

	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if model.showHelp {
		t.Error("showHelp should be false after toggle")
	}
}

func TestModel_Notifications(t *testing.T) {
	model := NewModel(nil)

	msg := AddNotificationMsg{
		Message:  "Test Note",
		Type:     NotificationInfo,
		Duration: 0,
	}

	model.Update(msg)

	notifs := model.state.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("Expected 1 notification, got %d", len(notifs))
	}

	model.ready = true
	model.width = 80
	model.height = 24
	view := model.View()
	if !strings.Contains(view, "Test Note") {
		t.Error("View should show notification")
	}
}

func TestModel_HandleServiceEvent(t *testing.T) {
	model := NewModel(nil)

	// Generations update round-trips into state via the emitted message
	event := services.GenerationsUpdatedEvent{
		Tier: models.TierAll,
		State: poller.QueryState[models.GenerationRecord]{
			Data: []models.GenerationRecord{{Count: 7}},
		},
	}
	cmd := model.handleServiceEvent(event)
	if cmd == nil {
		t.Fatal("expected a command for generations update")
	}
	model.Update(cmd())

	if len(model.state.GetGenerations().Data) != 1 {
		t.Error("generations state should be updated")
	}

	// Models usage update
	usageEvent := services.ModelsUsageUpdatedEvent{
		State: poller.QueryState[models.ModelUsageRecord]{
			Data: []models.ModelUsageRecord{{Model: "gpt-a"}},
		},
	}
	cmd = model.handleServiceEvent(usageEvent)
	if cmd == nil {
		t.Fatal("expected a command for models usage update")
	}
	model.Update(cmd())

	if len(model.state.GetModelsUsage().Data) != 1 {
		t.Error("models usage state should be updated")
	}

	// Error event triggers a notification command
	errEvent := services.ErrorEvent{
		Channel: poller.ChannelGenerations,
		Message: "Failed to load generations data",
		Err:     errors.New("boom"),
	}
	cmd = model.handleServiceEvent(errEvent)
	if cmd == nil {
		t.Fatal("error event should trigger notification command")
	}

	// Token reload routes through the app message and ends in an info
	// notification
	cmd = model.handleServiceEvent(services.TokenReloadedEvent{})
	if cmd == nil {
		t.Fatal("token reload should produce a command")
	}
	msg := cmd()
	if _, ok := msg.(TokenReloadedMsg); !ok {
		t.Fatalf("expected TokenReloadedMsg, got %T", msg)
	}
	_, cmd = model.Update(msg)
	if cmd == nil {
		t.Fatal("token reload message should trigger a notification command")
	}
	if addMsg, ok := cmd().(AddNotificationMsg); !ok || addMsg.Type != NotificationInfo {
		t.Error("token reload should produce an info notification")
	}
}

func TestModel_Update_Messages(t *testing.T) {
	model := NewModel(nil)

	model.Update(StartLoadingMsg{Resource: "generations"})
	if !model.state.Loading.Generations {
		t.Error("Loading.Generations should be true")
	}

	model.Update(StopLoadingMsg{Resource: "generations"})
	if model.state.Loading.Generations {
		t.Error("Loading.Generations should be false")
	}

	// Tier change invalidates generations data
	model.Update(GenerationsUpdatedMsg{
		Tier:  models.TierAll,
		State: poller.QueryState[models.GenerationRecord]{Data: []models.GenerationRecord{{Count: 1}}},
	})
	model.Update(TierChangedMsg{Tier: models.TierPro})
	if model.state.GetSelectedTier() != models.TierPro {
		t.Error("SelectedTier should be pro")
	}
	if model.state.GetGenerations().Data != nil {
		t.Error("tier change should invalidate generations data")
	}

	// Refresh with nil services is a no-op, covers the switch
	model.Update(RefreshMsg{Resource: "all"})
	model.Update(RefreshMsg{Resource: "generations"})
	model.Update(RefreshMsg{Resource: "models"})

	model.Update(AddNotificationMsg{Message: "test", Type: NotificationInfo})
	model.Update(RemoveNotificationMsg{ID: "nonexistent"})
	model.Update(ClearExpiredNotificationsMsg{})
	model.Update(ErrorMsg{Error: errors.New("bad"), Context: "test"})
}

func TestModel_HandleSpinnerTick(t *testing.T) {
	model := NewModel(nil)
	_, cmd := model.Update(spinner.TickMsg{})
	if cmd == nil {
		t.Error("Spinner tick should return command")
	}
}

func TestTabID_String(t *testing.T) {
	if TabOverview.String() != "Overview" {
		t.Error("TabOverview.String() mismatch")
	}
	if TabModels.String() != "Models" {
		t.Error("TabModels.String() mismatch")
	}
	if TabInfo.String() != "Info" {
		t.Error("TabInfo.String() mismatch")
	}
	if TabID(999).String() != "Unknown" {
		t.Error("Unknown tab string mismatch")
	}
}

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	if len(km.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(km.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}
