// Package store provides the key-value persistence surface remembered
// sessions are written to.
package store

import "sync"

// Store persists string fields by key. Implementations are safe for
// concurrent use.
type Store interface {
	Get(key string) string
	Set(key, value string) error
	Clear() error
}

// Memory is a Store that never touches disk. It backs tests and
// "don't remember me" sessions.
type Memory struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: map[string]string{}}
}

func (m *Memory) Get(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = map[string]string{}
	return nil
}
