package storage

import (
	"sort"
	"sync"

	"chorddfs/internal/chorderr"
	"chorddfs/internal/logger"
)

// MemoryBackend is an in-memory Backend. Concurrency-safe and intended for
// tests and for nodes that do not require persistence across restarts.
type MemoryBackend struct {
	lgr  logger.Logger
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend(lgr logger.Logger) *MemoryBackend {
	return &MemoryBackend{
		lgr:  lgr,
		data: make(map[string][]byte),
	}
}

func (s *MemoryBackend) Save(name string, data []byte) error {
	clean, err := SanitizeName(name)
	if err != nil {
		return err
	}
	cp := append([]byte(nil), data...)
	s.mu.Lock()
	_, existed := s.data[clean]
	s.data[clean] = cp
	s.mu.Unlock()
	if existed {
		s.lgr.Debug("backend: file overwritten", logger.F("name", clean))
	} else {
		s.lgr.Debug("backend: file saved", logger.F("name", clean))
	}
	return nil
}

func (s *MemoryBackend) Get(name string) ([]byte, error) {
	clean, err := SanitizeName(name)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	data, ok := s.data[clean]
	s.mu.RUnlock()
	if !ok {
		return nil, chorderr.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryBackend) Delete(name string) error {
	clean, err := SanitizeName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	_, ok := s.data[clean]
	if ok {
		delete(s.data, clean)
	}
	s.mu.Unlock()
	if !ok {
		return chorderr.ErrNotFound
	}
	s.lgr.Debug("backend: file deleted", logger.F("name", clean))
	return nil
}

func (s *MemoryBackend) List() ([]string, error) {
	s.mu.RLock()
	names := make([]string, 0, len(s.data))
	for n := range s.data {
		names = append(names, n)
	}
	s.mu.RUnlock()
	sort.Strings(names)
	return names, nil
}

func (s *MemoryBackend) ScanRange(inRange func(name string) bool) ([]Entry, error) {
	s.mu.RLock()
	var out []Entry
	for name, data := range s.data {
		if inRange(name) {
			out = append(out, Entry{Name: name, Data: append([]byte(nil), data...)})
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
