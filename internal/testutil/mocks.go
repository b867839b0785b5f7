package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/models"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/providers"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/ratelimit"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/storage"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockMetrics implements providers.MetricsProviderInterface and counts
// decisions per action/outcome.
type MockMetrics struct {
	mu        sync.Mutex
	Decisions map[string]int
	CacheHit  int
	CacheMiss int
	Pruned    map[string]int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{Decisions: make(map[string]int), Pruned: make(map[string]int)}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) ObserveStoreDuration(_ string, _ time.Duration)   {}

func (m *MockMetrics) IncDecision(action, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Decisions[action+":"+outcome]++
}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHit++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMiss++
}

func (m *MockMetrics) AddPrunedEntries(scope string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Pruned[scope] += count
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockRateStore is an in-memory ratelimit.Store with injectable
// failures.
type MockRateStore struct {
	mu        sync.Mutex
	Entries   map[string]models.RateLimitEntry
	GetErr    error
	CommitErr error
	PruneErr  error
	Commits   int
	Prunes    []string
}

var _ ratelimit.Store = (*MockRateStore)(nil)

func NewMockRateStore() *MockRateStore {
	return &MockRateStore{Entries: make(map[string]models.RateLimitEntry)}
}

func storeKey(scope, key string) string { return scope + ":" + key }

func (m *MockRateStore) Get(_ context.Context, scope, key string, now time.Time, window time.Duration) (models.RateLimitEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return models.NewRateLimitEntry(scope, key, now), m.GetErr
	}
	entry, ok := m.Entries[storeKey(scope, key)]
	if !ok || entry.Expired(now, window) {
		return models.NewRateLimitEntry(scope, key, now), nil
	}
	return entry, nil
}

func (m *MockRateStore) Commit(_ context.Context, entry models.RateLimitEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CommitErr != nil {
		return m.CommitErr
	}
	m.Entries[storeKey(entry.Scope, entry.Key)] = entry
	m.Commits++
	return nil
}

func (m *MockRateStore) Prune(_ context.Context, scope string, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PruneErr != nil {
		return 0, m.PruneErr
	}
	m.Prunes = append(m.Prunes, scope)
	removed := 0
	for k, e := range m.Entries {
		if e.Scope == scope && e.FirstSeen.Before(cutoff) {
			delete(m.Entries, k)
			removed++
		}
	}
	return removed, nil
}

// MockRepository is an in-memory storage.FeatureRepositoryInterface.
type MockRepository struct {
	mu            sync.Mutex
	Features      map[string]*models.CommunityFeature
	Waitlist      map[string]*models.WaitlistEntry
	CreateErr     error
	GetErr        error
	ListErr       error
	IncrementErr  error
	SetAllowedErr error
}

var _ storage.FeatureRepositoryInterface = (*MockRepository)(nil)

func NewMockRepository() *MockRepository {
	return &MockRepository{
		Features: make(map[string]*models.CommunityFeature),
		Waitlist: make(map[string]*models.WaitlistEntry),
	}
}

func (m *MockRepository) CreateFeature(_ context.Context, f *models.CommunityFeature) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	cp := *f
	m.Features[f.ID] = &cp
	return nil
}

func (m *MockRepository) GetFeature(_ context.Context, id string) (*models.CommunityFeature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	f, ok := m.Features[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (m *MockRepository) ListVisible(_ context.Context) ([]models.CommunityFeature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []models.CommunityFeature
	for _, f := range m.Features {
		if f.Visible() {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (m *MockRepository) ListPending(_ context.Context) ([]models.CommunityFeature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []models.CommunityFeature
	for _, f := range m.Features {
		if f.Greenlit == nil && !f.Allowed {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (m *MockRepository) IncrementReported(_ context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IncrementErr != nil {
		return 0, m.IncrementErr
	}
	f, ok := m.Features[id]
	if !ok {
		return 0, nil
	}
	f.ReportedCount++
	return f.ReportedCount, nil
}

func (m *MockRepository) SetAllowed(_ context.Context, id string, allowed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetAllowedErr != nil {
		return m.SetAllowedErr
	}
	if f, ok := m.Features[id]; ok {
		f.Allowed = allowed
	}
	return nil
}

func (m *MockRepository) SetGreenlit(_ context.Context, id string, greenlit bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.Features[id]
	if !ok {
		return storage.ErrFeatureNotFound
	}
	if f.Greenlit != nil {
		return storage.ErrGreenlitDecided
	}
	f.Greenlit = &greenlit
	return nil
}

func (m *MockRepository) CreateWaitlistEntry(_ context.Context, e *models.WaitlistEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	cp := *e
	m.Waitlist[e.Email] = &cp
	return nil
}

// MockArchive records audit events in memory.
type MockArchive struct {
	mu     sync.Mutex
	Events []MockAuditEvent
}

type MockAuditEvent struct {
	Action   string
	Reason   models.Reason
	ScopeKey string
}

func (m *MockArchive) Record(action string, reason models.Reason, scopeKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, MockAuditEvent{Action: action, Reason: reason, ScopeKey: scopeKey})
}

func (m *MockArchive) Flush() error   { return nil }
func (m *MockArchive) Restore() error { return nil }
func (m *MockArchive) Close()         {}

// MockCompressor implements audit.CompressorInterface with injectable
// behavior; default is identity.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}
