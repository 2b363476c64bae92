package models

import (
	"time"
)

// PayloadKind names a cached payload. There is one cache key per kind.
type PayloadKind string

const (
	PayloadScores PayloadKind = "scores"
	PayloadNews   PayloadKind = "news"
)

// CachePayload is the pipeline's output contract with the cache.
// A nil GeneratedAt means "not yet produced", which is distinct from a
// generated payload with no items.
type CachePayload[T any] struct {
	GeneratedAt *time.Time `json:"generatedAt"`
	Items       []T        `json:"items"`
}

// NewPayload builds a generated payload, normalizing nil items to an empty list.
func NewPayload[T any](generatedAt time.Time, items []T) CachePayload[T] {
	if items == nil {
		items = []T{}
	}
	at := generatedAt.UTC()
	return CachePayload[T]{GeneratedAt: &at, Items: items}
}

// EmptyPayload is the "not yet produced" value returned on a cache miss.
func EmptyPayload[T any]() CachePayload[T] {
	return CachePayload[T]{Items: []T{}}
}

// Generated reports whether the payload has been produced.
func (p CachePayload[T]) Generated() bool {
	return p.GeneratedAt != nil
}
