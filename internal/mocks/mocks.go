package mocks

// Package mocks contains simple hand-written test doubles for the client
// core ports. These are lightweight and suitable for unit tests without
// codegen; see generate.go for the gomock-generated alternatives.

import (
	"context"
	"sync"

	"github.com/vitatrack/client-core/internal/domain/access"
	"github.com/vitatrack/client-core/internal/domain/queue"
	"github.com/vitatrack/client-core/internal/domain/session"
	"github.com/vitatrack/client-core/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.CredentialStore   = (*MemoryCredentialStore)(nil)
	_ ports.QueueStore        = (*MemoryQueueStore)(nil)
	_ ports.AuthAPI           = (*MockAuthAPI)(nil)
	_ ports.EntitlementSource = (*MockEntitlementSource)(nil)
	_ ports.Navigator         = (*RecordingNavigator)(nil)
	_ ports.Notifier          = (*RecordingNotifier)(nil)
	_ ports.ReplayTrigger     = (*CountingTrigger)(nil)
)

// MemoryCredentialStore is an in-memory credential store.
type MemoryCredentialStore struct {
	mu    sync.Mutex
	creds *session.Credentials

	// Fail switches, for exercising storage-failure paths.
	GetErr   error
	SetErr   error
	ClearErr error
}

// NewMemoryCredentialStore creates an empty in-memory credential store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

func (s *MemoryCredentialStore) Get(_ context.Context) (session.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return session.Credentials{}, s.GetErr
	}
	if s.creds == nil {
		return session.Credentials{}, ports.ErrNoCredentials
	}
	return *s.creds, nil
}

func (s *MemoryCredentialStore) Set(_ context.Context, creds session.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetErr != nil {
		return s.SetErr
	}
	c := creds
	s.creds = &c
	return nil
}

func (s *MemoryCredentialStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.creds = nil
	return nil
}

// MemoryQueueStore is an in-memory queue store.
type MemoryQueueStore struct {
	mu      sync.Mutex
	entries map[string]queue.Entry

	AppendErr error
	ListErr   error
	RemoveErr error
}

// NewMemoryQueueStore creates an empty in-memory queue store.
func NewMemoryQueueStore() *MemoryQueueStore {
	return &MemoryQueueStore{entries: make(map[string]queue.Entry)}
}

func (s *MemoryQueueStore) Append(_ context.Context, entry queue.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AppendErr != nil {
		return s.AppendErr
	}
	s.entries[entry.ID] = entry
	return nil
}

func (s *MemoryQueueStore) List(_ context.Context) ([]queue.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	out := make([]queue.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out, nil
}

func (s *MemoryQueueStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RemoveErr != nil {
		return s.RemoveErr
	}
	delete(s.entries, id)
	return nil
}

// Len reports how many entries are currently stored.
func (s *MemoryQueueStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// MockAuthAPI simulates the backend auth endpoints with func fields.
type MockAuthAPI struct {
	LoginFunc    func(ctx context.Context, email, password string) (session.Credentials, error)
	RegisterFunc func(ctx context.Context, profile ports.RegisterInput) (session.Credentials, error)
	MeFunc       func(ctx context.Context) (session.UserSnapshot, error)

	// DefaultUser backs the zero-config success paths.
	DefaultUser session.UserSnapshot
}

// NewMockAuthAPI creates a MockAuthAPI with a sensible default identity.
func NewMockAuthAPI() *MockAuthAPI {
	return &MockAuthAPI{
		DefaultUser: session.UserSnapshot{
			ID:            "user-1",
			Email:         "mock.user@example.com",
			Role:          session.RoleUser,
			CreditBalance: 10,
		},
	}
}

func (m *MockAuthAPI) Login(ctx context.Context, email, password string) (session.Credentials, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	user := m.DefaultUser
	user.Email = email
	return session.Credentials{Token: "mock-token", User: user}, nil
}

func (m *MockAuthAPI) Register(ctx context.Context, profile ports.RegisterInput) (session.Credentials, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, profile)
	}
	user := m.DefaultUser
	user.Email = profile.Email
	user.IsDoctor = profile.IsDoctor
	return session.Credentials{Token: "mock-token", User: user}, nil
}

func (m *MockAuthAPI) Me(ctx context.Context) (session.UserSnapshot, error) {
	if m.MeFunc != nil {
		return m.MeFunc(ctx)
	}
	return m.DefaultUser, nil
}

// MockEntitlementSource simulates the entitlement authority.
type MockEntitlementSource struct {
	CheckFunc func(ctx context.Context) (access.Entitlement, error)

	Entitlement access.Entitlement
}

func (m *MockEntitlementSource) Check(ctx context.Context) (access.Entitlement, error) {
	if m.CheckFunc != nil {
		return m.CheckFunc(ctx)
	}
	return m.Entitlement, nil
}

// RecordingNavigator records redirect requests.
type RecordingNavigator struct {
	mu        sync.Mutex
	redirects []string
}

func (n *RecordingNavigator) RedirectToLogin(fromPath string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.redirects = append(n.redirects, fromPath)
}

// Redirects returns the recorded fromPath values in order.
func (n *RecordingNavigator) Redirects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.redirects...)
}

// RecordingNotifier records user-visible notices.
type RecordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *RecordingNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

// Messages returns the recorded notices in order.
func (n *RecordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

// CountingTrigger counts replay kicks.
type CountingTrigger struct {
	mu    sync.Mutex
	kicks int
}

func (t *CountingTrigger) Kick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.kicks++
}

// Kicks returns how many times Kick was called.
func (t *CountingTrigger) Kicks() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.kicks
}
