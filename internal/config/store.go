package config

import (
	"sync"

	"github.com/AloySobek/ft-gomoku/engine"
)

// SettingsStore holds the engine settings new games start from. The server
// updates it at runtime; running games keep the settings they were created
// with.
type SettingsStore struct {
	mu       sync.RWMutex
	settings engine.Settings
}

func NewSettingsStore(settings engine.Settings) *SettingsStore {
	return &SettingsStore{settings: settings}
}

func (s *SettingsStore) Get() engine.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *SettingsStore) Update(settings engine.Settings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
}
