package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"folivix/internal/models"
	"folivix/internal/network"
	"folivix/internal/providers"
	"folivix/internal/storage"
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

// MockFileStore implements storage.FileStoreInterface in memory.
// Results are kept per user in insertion order; ListAnalysisResults
// returns them as stored, so tests control ordering directly.
type MockFileStore struct {
	mu      sync.Mutex
	Users   []models.User
	Results map[string][]models.AnalysisResult

	CreateErr error
	ListErr   error
	SaveErr   error
	DeleteErr error

	SaveCalls   []string
	DeleteCalls []string
	nextSlot    int
}

func NewMockFileStore() *MockFileStore {
	return &MockFileStore{Results: make(map[string][]models.AnalysisResult)}
}

func (m *MockFileStore) CreateUser(name string, _ io.Reader) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return models.User{}, m.CreateErr
	}
	if len(m.Users) >= 3 {
		return models.User{}, storage.ErrCapacityExceeded
	}
	m.nextSlot++
	user := models.User{ID: fmt.Sprintf("User%d", m.nextSlot), Name: name}
	m.Users = append(m.Users, user)
	return user, nil
}

func (m *MockFileStore) ListUsers() ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]models.User, len(m.Users))
	copy(out, m.Users)
	return out, nil
}

func (m *MockFileStore) RenameUser(id string, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Users {
		if m.Users[i].ID == id {
			m.Users[i].Name = name
			return nil
		}
	}
	return storage.ErrUserNotFound
}

func (m *MockFileStore) SetUserImage(id string, _ io.Reader) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Users {
		if m.Users[i].ID == id {
			m.Users[i].ImagePath = m.Users[i].ID + "/profile_image.jpg"
			return nil
		}
	}
	return storage.ErrUserNotFound
}

func (m *MockFileStore) DeleteUser(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	for i := range m.Users {
		if m.Users[i].ID == id {
			m.Users = append(m.Users[:i], m.Users[i+1:]...)
			delete(m.Results, id)
			return nil
		}
	}
	return storage.ErrUserNotFound
}

func (m *MockFileStore) SaveAnalysisResult(userID string, result models.AnalysisResult, _ io.Reader) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.SaveCalls = append(m.SaveCalls, userID+":"+result.ID)
	m.Results[userID] = append(m.Results[userID], result)
	return nil
}

func (m *MockFileStore) ListAnalysisResults(userID string) ([]models.AnalysisResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]models.AnalysisResult, len(m.Results[userID]))
	copy(out, m.Results[userID])
	return out, nil
}

func (m *MockFileStore) DeleteAnalysisResult(userID string, resultID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.DeleteCalls = append(m.DeleteCalls, userID+":"+resultID)
	results := m.Results[userID]
	for i := range results {
		if results[i].ID == resultID {
			m.Results[userID] = append(results[:i], results[i+1:]...)
			return nil
		}
	}
	return storage.ErrResultNotFound
}

// MockClassifier implements network.ClassifierClientInterface.
type MockClassifier struct {
	mu       sync.Mutex
	Response *network.PredictionResponse
	Err      error
	Calls    [][]byte
}

func (m *MockClassifier) Predict(_ context.Context, image []byte) (*network.PredictionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, image)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

// MockPrefs implements providers.PrefsProviderInterface in memory.
type MockPrefs struct {
	mu       sync.Mutex
	Host     string
	LastUser string
	HasLast  bool

	SetHostErr error
	watchers   []chan string
}

func (m *MockPrefs) ServerHost() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Host
}

func (m *MockPrefs) SetServerHost(host string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetHostErr != nil {
		return m.SetHostErr
	}
	m.Host = host
	for _, ch := range m.watchers {
		select {
		case ch <- host:
		default:
		}
	}
	return nil
}

func (m *MockPrefs) WatchServerHost() (<-chan string, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan string, 1)
	ch <- m.Host
	m.watchers = append(m.watchers, ch)
	return ch, func() {}
}

func (m *MockPrefs) LastUserID() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LastUser, m.HasLast
}

func (m *MockPrefs) SetLastUserID(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastUser = id
	m.HasLast = true
	return nil
}

func (m *MockPrefs) ClearLastUserID() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastUser = ""
	m.HasLast = false
	return nil
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

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu                  sync.Mutex
	Requests            int
	CacheHits           int
	CacheMisses         int
	Classifications     map[string]int
	UsersTotal          int
	ResultsTotal        int
	UsersTotalUpdates   int
	ResultsTotalUpdates int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) IncClassificationsTotal(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Classifications == nil {
		m.Classifications = make(map[string]int)
	}
	m.Classifications[outcome]++
}

func (m *MockMetrics) ObserveClassificationDuration(_ time.Duration) {}

func (m *MockMetrics) SetUsersTotal(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UsersTotal = count
	m.UsersTotalUpdates++
}

func (m *MockMetrics) SetResultsTotal(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResultsTotal = count
	m.ResultsTotalUpdates++
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
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

// ImageBytes returns a small fake JPEG payload for upload tests.
func ImageBytes() []byte {
	return bytes.Repeat([]byte{0xFF, 0xD8, 0xFF, 0xE0}, 8)
}
