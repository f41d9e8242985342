// Package poller schedules the recurring metric fetches and owns the
// per-channel query state delivered to the UI.
package poller

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/a-linden/genboard-tui/internal/logger"
	"github.com/a-linden/genboard-tui/internal/models"
)

// Client is the analytics backend surface the poller needs.
type Client interface {
	FetchGenerations(ctx context.Context, tier models.Tier) ([]models.GenerationRecord, error)
	FetchModelsUsage(ctx context.Context) ([]models.ModelUsageRecord, error)
}

// Channel identifies one independently scheduled polling query.
type Channel string

const (
	// ChannelGenerations is the tier-keyed generation volume query.
	ChannelGenerations Channel = "generations"
	// ChannelModelsUsage is the unkeyed per-model usage query.
	ChannelModelsUsage Channel = "models-usage"
)

// EventType defines the type of poller event.
type EventType int

const (
	// EventUpdated indicates a channel resolved with fresh data.
	EventUpdated EventType = iota
	// EventError indicates a channel transitioned into a failed state.
	// Repeated failures on an already failed channel do not re-emit.
	EventError
)

// Event represents a poller event.
type Event struct {
	Type    EventType
	Channel Channel
	Tier    models.Tier
	Err     error
}

// QueryState is the latest resolved or in-flight state of one channel.
// After a failure Data keeps its last good value.
type QueryState[T any] struct {
	Data        []T
	IsLoading   bool
	Err         error
	LastUpdated time.Time
}

// Config holds configuration for the poller.
type Config struct {
	GenerationsInterval time.Duration
	ModelsInterval      time.Duration
	InitialTier         models.Tier
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		GenerationsInterval: 30 * time.Second,
		ModelsInterval:      60 * time.Second,
		InitialTier:         models.TierAll,
	}
}

// Service polls both channels on their own cadence. Each channel is
// serialized against itself: a new fetch for a key never starts while one
// for the same key is outstanding. Results are tagged with the key captured
// at issue time and discarded if the active key has moved on.
type Service struct {
	client Client
	config Config

	mu             sync.Mutex
	tier           models.Tier
	generations    QueryState[models.GenerationRecord]
	modelsUsage    QueryState[models.ModelUsageRecord]
	genInFlight    map[models.Tier]bool
	modelsInFlight bool

	eventChan  chan Event
	stopChan   chan struct{}
	genKick    chan struct{}
	modelsKick chan struct{}
	closeOnce  sync.Once
}

// New creates a poller and starts both polling goroutines.
func New(client Client, config Config) *Service {
	if config.GenerationsInterval == 0 || config.ModelsInterval == 0 {
		config = DefaultConfig()
	}
	if !config.InitialTier.Valid() {
		config.InitialTier = models.TierAll
	}

	s := &Service{
		client:      client,
		config:      config,
		tier:        config.InitialTier,
		genInFlight: make(map[models.Tier]bool),
		eventChan:   make(chan Event, 100),
		stopChan:    make(chan struct{}),
		genKick:     make(chan struct{}, 1),
		modelsKick:  make(chan struct{}, 1),
	}

	go s.pollGenerations()
	go s.pollModelsUsage()

	return s
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Tier returns the active generations key.
func (s *Service) Tier() models.Tier {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tier
}

// Generations returns a snapshot of the generations channel state.
func (s *Service) Generations() QueryState[models.GenerationRecord] {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.generations
	state.Data = slices.Clone(state.Data)
	return state
}

// ModelsUsage returns a snapshot of the models-usage channel state.
func (s *Service) ModelsUsage() QueryState[models.ModelUsageRecord] {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.modelsUsage
	state.Data = slices.Clone(state.Data)
	return state
}

// SetTier changes the generations key. The previous key's data is
// invalidated, an immediate fetch is kicked off, and the timer re-arms.
// A no-op when the tier is unchanged or invalid.
func (s *Service) SetTier(tier models.Tier) {
	if !tier.Valid() {
		logger.Warn("ignoring invalid tier", "tier", tier)
		return
	}

	s.mu.Lock()
	if tier == s.tier {
		s.mu.Unlock()
		return
	}
	s.tier = tier
	s.generations.Data = nil
	s.generations.Err = nil
	s.generations.IsLoading = true
	s.mu.Unlock()

	kick(s.genKick)
}

// Refresh requests an immediate fetch on both channels.
func (s *Service) Refresh() {
	kick(s.genKick)
	kick(s.modelsKick)
}

// RefreshGenerations requests an immediate generations fetch.
func (s *Service) RefreshGenerations() {
	kick(s.genKick)
}

// RefreshModelsUsage requests an immediate models-usage fetch.
func (s *Service) RefreshModelsUsage() {
	kick(s.modelsKick)
}

// Close stops both polling loops.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
	})
	return nil
}

func (s *Service) pollGenerations() {
	s.refreshGenerations()

	ticker := time.NewTicker(s.config.GenerationsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refreshGenerations()
		case <-s.genKick:
			ticker.Reset(s.config.GenerationsInterval)
			s.refreshGenerations()
		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) pollModelsUsage() {
	s.refreshModelsUsage()

	ticker := time.NewTicker(s.config.ModelsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refreshModelsUsage()
		case <-s.modelsKick:
			ticker.Reset(s.config.ModelsInterval)
			s.refreshModelsUsage()
		case <-s.stopChan:
			return
		}
	}
}

// refreshGenerations issues a fetch for the active tier unless one for that
// key is already outstanding.
func (s *Service) refreshGenerations() {
	s.mu.Lock()
	key := s.tier
	if s.genInFlight[key] {
		s.mu.Unlock()
		return
	}
	s.genInFlight[key] = true
	s.generations.IsLoading = true
	s.mu.Unlock()

	go func() {
		records, err := s.client.FetchGenerations(context.Background(), key)
		s.resolveGenerations(key, records, err)
	}()
}

func (s *Service) resolveGenerations(key models.Tier, records []models.GenerationRecord, err error) {
	s.mu.Lock()
	delete(s.genInFlight, key)

	if key != s.tier {
		s.mu.Unlock()
		logger.Debug("discarding stale generations result", "tier", key)
		return
	}

	if err != nil {
		wasFailed := s.generations.Err != nil
		s.generations.Err = err
		s.generations.IsLoading = false
		s.mu.Unlock()

		logger.Error("generations fetch failed", "tier", key, "error", err)
		if !wasFailed {
			s.sendEvent(Event{Type: EventError, Channel: ChannelGenerations, Tier: key, Err: err})
		}
		return
	}

	s.generations.Data = records
	s.generations.Err = nil
	s.generations.IsLoading = false
	s.generations.LastUpdated = time.Now()
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventUpdated, Channel: ChannelGenerations, Tier: key})
}

func (s *Service) refreshModelsUsage() {
	s.mu.Lock()
	if s.modelsInFlight {
		s.mu.Unlock()
		return
	}
	s.modelsInFlight = true
	s.modelsUsage.IsLoading = true
	s.mu.Unlock()

	go func() {
		records, err := s.client.FetchModelsUsage(context.Background())
		s.resolveModelsUsage(records, err)
	}()
}

func (s *Service) resolveModelsUsage(records []models.ModelUsageRecord, err error) {
	s.mu.Lock()
	s.modelsInFlight = false

	if err != nil {
		wasFailed := s.modelsUsage.Err != nil
		s.modelsUsage.Err = err
		s.modelsUsage.IsLoading = false
		s.mu.Unlock()

		logger.Error("models usage fetch failed", "error", err)
		if !wasFailed {
			s.sendEvent(Event{Type: EventError, Channel: ChannelModelsUsage, Err: err})
		}
		return
	}

	s.modelsUsage.Data = records
	s.modelsUsage.Err = nil
	s.modelsUsage.IsLoading = false
	s.modelsUsage.LastUpdated = time.Now()
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventUpdated, Channel: ChannelModelsUsage})
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// kick triggers an immediate refresh without blocking; a pending kick is
// enough.
func kick(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
