package network

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folivix/internal/providers"
	"folivix/internal/structures"
)

// local mocks to avoid import cycle with testutil

type clientTestLogger struct{}

func (m *clientTestLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *clientTestLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *clientTestLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *clientTestLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *clientTestLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *clientTestLogger) Close()                                                  {}

type prefsStub struct {
	host string
}

func (p *prefsStub) ServerHost() string              { return p.host }
func (p *prefsStub) SetServerHost(host string) error { p.host = host; return nil }
func (p *prefsStub) WatchServerHost() (<-chan string, func()) {
	ch := make(chan string, 1)
	ch <- p.host
	return ch, func() {}
}
func (p *prefsStub) LastUserID() (string, bool)   { return "", false }
func (p *prefsStub) SetLastUserID(_ string) error { return nil }
func (p *prefsStub) ClearLastUserID() error       { return nil }

func newTestClient(t *testing.T, handler http.Handler) ClassifierClientInterface {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	host, portStr, err := net.SplitHostPort(server.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	conf := &structures.Config{
		Classifier: structures.ClassifierConfig{
			DefaultHost: host,
			Port:        port,
			Timeout:     5 * time.Second,
		},
	}
	return NewClassifierClient(conf, &prefsStub{host: host}, &clientTestLogger{})
}

func TestClassifierClient_Predict(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "leaf.jpg", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"className":"Common Rust","confidence":0.93,"processingTime":1.25}`))
	}))

	prediction, err := client.Predict(context.Background(), []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "Common Rust", prediction.ClassName)
	assert.Equal(t, 0.93, prediction.Confidence)
	assert.Equal(t, 1.25, prediction.ProcessingTime)
}

func TestClassifierClient_Predict_ServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := client.Predict(context.Background(), []byte("jpeg-bytes"))
	require.Error(t, err)

	var cerr *ClassificationError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Message, "500")
}

func TestClassifierClient_Predict_EmptyClassName(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"confidence":0.5}`))
	}))

	_, err := client.Predict(context.Background(), []byte("jpeg-bytes"))
	require.Error(t, err)

	var cerr *ClassificationError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Message, "unreadable")
}

func TestClassifierClient_Predict_Unreachable(t *testing.T) {
	conf := &structures.Config{
		Classifier: structures.ClassifierConfig{
			DefaultHost: "127.0.0.1",
			Port:        1, // nothing listens here
			Timeout:     time.Second,
		},
	}
	client := NewClassifierClient(conf, &prefsStub{host: "127.0.0.1"}, &clientTestLogger{})

	_, err := client.Predict(context.Background(), []byte("jpeg-bytes"))
	require.Error(t, err)

	var cerr *ClassificationError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Message, "could not reach")
}

func TestClassifierClient_UsesPrefsHostPerCall(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"className":"Healthy","confidence":0.99,"processingTime":0.4}`))
	}))
	t.Cleanup(server.Close)

	host, portStr, err := net.SplitHostPort(server.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	prefs := &prefsStub{host: "203.0.113.9"}
	conf := &structures.Config{
		Classifier: structures.ClassifierConfig{
			DefaultHost: "203.0.113.9",
			Port:        port,
			Timeout:     time.Second,
		},
	}
	client := NewClassifierClient(conf, prefs, &clientTestLogger{})

	// Switching the preference redirects the next call, no rebuild needed.
	require.NoError(t, prefs.SetServerHost(host))

	_, err = client.Predict(context.Background(), []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
}
