// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package store holds blog records in process memory.
package store

import (
	"context"
	"slices"
	"sync"
)

// Blog is a single stored record.
type Blog struct {
	ID    int64
	Title string
}

// Memory is an in-memory, insertion ordered collection of blogs.
// It is safe for concurrent use.
//
// Ids are issued from a counter which only ever grows, so an id is
// never reused after its record is deleted.
type Memory struct {
	mu     sync.Mutex
	blogs  []Blog
	lastID int64
}

// Option configures a [Memory] store.
type Option func(*Memory)

// Seed preloads the store with one blog per title, in order.
func Seed(titles ...string) Option {
	return func(m *Memory) {
		for _, title := range titles {
			m.lastID++
			m.blogs = append(m.blogs, Blog{ID: m.lastID, Title: title})
		}
	}
}

// NewMemory returns an empty store unless seeded with [Seed].
func NewMemory(opts ...Option) *Memory {
	m := &Memory{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// List returns a copy of every blog in insertion order.
func (m *Memory) List(ctx context.Context) []Blog {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Blog, len(m.blogs))
	copy(out, m.blogs)
	return out
}

// Get returns the blog with the given id and whether it exists.
func (m *Memory) Get(ctx context.Context, id int64) (Blog, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return Blog{}, false
	}
	return m.blogs[i], true
}

// Create appends a new blog with the next id.
func (m *Memory) Create(ctx context.Context, title string) Blog {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastID++
	b := Blog{ID: m.lastID, Title: title}
	m.blogs = append(m.blogs, b)
	return b
}

// Update replaces the title of the blog with the given id, keeping its
// position. Nothing changes if no such blog exists.
func (m *Memory) Update(ctx context.Context, id int64, title string) (Blog, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return Blog{}, false
	}
	m.blogs[i].Title = title
	return m.blogs[i], true
}

// Delete removes the blog with the given id and reports whether one was removed.
func (m *Memory) Delete(ctx context.Context, id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return false
	}
	m.blogs = slices.Delete(m.blogs, i, i+1)
	return true
}

// Len returns the number of stored blogs.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.blogs)
}

func (m *Memory) index(id int64) int {
	return slices.IndexFunc(m.blogs, func(b Blog) bool {
		return b.ID == id
	})
}
