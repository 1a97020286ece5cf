/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package store persists typed values under string keys on top of a
// synchronous key-value medium, mirroring each value in memory.
package store

import (
	"encoding/json"
	"log/slog"
)

// Medium is a durable key to string mapping. Both operations may fail.
type Medium interface {
	Read(key string) (value string, ok bool, err error)
	Write(key, value string) error
}

// Store holds the cached value for one key. A nil medium means no durable
// storage is available: the default is served and nothing is written.
//
// Store is not safe for concurrent use.
type Store[T any] struct {
	medium Medium
	key    string
	def    T
	log    *slog.Logger

	loaded bool
	value  T
}

// New returns a store for key that serves def until a value is saved.
func New[T any](medium Medium, key string, def T, logger *slog.Logger) *Store[T] {
	if logger == nil {
		logger = slog.Default()
	}

	return &Store[T]{
		medium: medium,
		key:    key,
		def:    def,
		log:    logger,
	}
}

func (s *Store[T]) Key() string {
	return s.key
}

// Get returns the current value, loading it from the medium on first use.
// Missing or unparsable values yield the default.
func (s *Store[T]) Get() T {
	if !s.loaded {
		s.value = s.load()
		s.loaded = true
	}

	return s.value
}

// Set publishes v as the cached value and writes it through. Write failures
// are logged and leave the cache ahead of the medium.
func (s *Store[T]) Set(v T) {
	s.value = v
	s.loaded = true

	if s.medium == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("store: encode failed", "key", s.key, "err", err)
		return
	}

	if err := s.medium.Write(s.key, string(data)); err != nil {
		s.log.Warn("store: write failed", "key", s.key, "err", err)
	}
}

func (s *Store[T]) load() T {
	if s.medium == nil {
		return s.def
	}

	raw, ok, err := s.medium.Read(s.key)
	if err != nil {
		s.log.Warn("store: read failed", "key", s.key, "err", err)
		return s.def
	}
	if !ok || raw == "" {
		return s.def
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		s.log.Warn("store: parse failed", "key", s.key, "err", err)
		return s.def
	}

	return v
}
