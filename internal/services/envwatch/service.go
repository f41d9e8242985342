// Package envwatch watches the loaded .env file so the analytics token can
// be rotated without restarting the dashboard.
package envwatch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"

	"github.com/a-linden/genboard-tui/internal/logger"
)

const debounceDelay = 200 * time.Millisecond

// Event carries the re-read token after the watched file changes.
type Event struct {
	Token string
	Err   error
}

// Service watches one .env file. A service created with an empty path is
// disabled: it never emits and Close is a no-op.
type Service struct {
	mu            sync.Mutex
	path          string
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	closeOnce     sync.Once
}

// New creates a watcher for the given .env file and starts watching.
func New(path string) (*Service, error) {
	s := &Service{
		path:      path,
		eventChan: make(chan Event, 10),
		stopChan:  make(chan struct{}),
	}

	if path == "" {
		return s, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	s.watcher = watcher

	// Watch the directory: editors commonly replace the file on save,
	// which would drop a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	go s.watchLoop()

	return s, nil
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Path returns the watched file path, empty when disabled.
func (s *Service) Path() string {
	return s.path
}

func (s *Service) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			s.scheduleReload()

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logger.Error("env watcher error", "error", err)

		case <-s.stopChan:
			return
		}
	}
}

// scheduleReload debounces rapid consecutive writes into one reload.
func (s *Service) scheduleReload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(debounceDelay, s.reload)
}

func (s *Service) reload() {
	values, err := godotenv.Read(s.path)
	if err != nil {
		logger.Error("failed to re-read env file", "path", s.path, "error", err)
		s.sendEvent(Event{Err: err})
		return
	}

	logger.Info("env file reloaded", "path", s.path)
	s.sendEvent(Event{Token: values["ANALYTICS_TOKEN"]})
}

func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
	}
}

// Close stops watching.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.mu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.mu.Unlock()
		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
