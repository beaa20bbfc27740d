package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Strob0t/TaskRelay/internal/domain"
	"github.com/Strob0t/TaskRelay/internal/domain/task"
	"github.com/Strob0t/TaskRelay/internal/port/notifier"
)

// fakeProvider serves tasks from a map and counts calls.
type fakeProvider struct {
	mu           sync.Mutex
	tasks        map[string]*task.Task
	names        map[string]string
	taskErr      error
	contactsErr  error
	taskCalls    int
	contactCalls int
	contactDelay time.Duration

	// contactStarted is closed when the first contacts call begins.
	contactStarted chan struct{}
	startOnce      sync.Once
}

func (f *fakeProvider) Task(_ context.Context, id string) (*task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.taskCalls++
	if f.taskErr != nil {
		return nil, f.taskErr
	}
	t, ok := f.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (f *fakeProvider) ContactNames(ctx context.Context, ids []string) ([]string, error) {
	if f.contactStarted != nil {
		f.startOnce.Do(func() { close(f.contactStarted) })
	}
	if f.contactDelay > 0 {
		select {
		case <-time.After(f.contactDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contactCalls++
	if f.contactsErr != nil {
		return nil, f.contactsErr
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		if n, ok := f.names[id]; ok {
			out[i] = n
		} else {
			out[i] = id
		}
	}
	return out, nil
}

func (f *fakeProvider) counts() (tasks, contacts int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.taskCalls, f.contactCalls
}

// fakeNotifier records sent notifications.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []notifier.Notification
	err  error
}

func (f *fakeNotifier) Name() string { return "fake" }

func (f *fakeNotifier) Send(_ context.Context, n notifier.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// fakeHub records broadcast event types.
type fakeHub struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeHub) BroadcastEvent(_ context.Context, eventType string, _ any) {
	f.mu.Lock()
	f.events = append(f.events, eventType)
	f.mu.Unlock()
}

// fakeQueue records published subjects.
type fakeQueue struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakeQueue) Publish(_ context.Context, subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakeQueue) Drain() error { return nil }
func (f *fakeQueue) IsConnected() bool { return true }

// memCache is a map-backed cache.Cache.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, false, m.err
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

var errUpstream = errors.New("wrike API 500: boom")
