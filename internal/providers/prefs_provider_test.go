package providers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folivix/internal/structures"
)

func prefsConfig(t *testing.T) *structures.Config {
	t.Helper()
	return &structures.Config{
		Classifier: structures.ClassifierConfig{
			DefaultHost: "192.168.1.71",
			Port:        5000,
			Timeout:     30 * time.Second,
		},
		Prefs: structures.PrefsConfig{
			FilePath: filepath.Join(t.TempDir(), "prefs.yaml"),
		},
	}
}

func TestPrefsProvider_DefaultHostWithoutFile(t *testing.T) {
	prefs, err := NewPrefsProvider(prefsConfig(t), &cacheTestLogger{})
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.71", prefs.ServerHost())
}

func TestPrefsProvider_SetServerHostPersists(t *testing.T) {
	conf := prefsConfig(t)
	prefs, err := NewPrefsProvider(conf, &cacheTestLogger{})
	require.NoError(t, err)

	require.NoError(t, prefs.SetServerHost("10.0.0.5"))
	assert.Equal(t, "10.0.0.5", prefs.ServerHost())

	// A fresh provider reads the stored value back.
	reloaded, err := NewPrefsProvider(conf, &cacheTestLogger{})
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", reloaded.ServerHost())
}

func TestPrefsProvider_RejectsInvalidHostBeforeWriting(t *testing.T) {
	conf := prefsConfig(t)
	prefs, err := NewPrefsProvider(conf, &cacheTestLogger{})
	require.NoError(t, err)

	for _, host := range []string{"", "not-a-host", "999.1.1.1", "10.0.0", "1.2.3.4.5"} {
		err := prefs.SetServerHost(host)
		assert.ErrorIs(t, err, ErrInvalidServerHost, host)
	}

	// Rejected values never touch the file or the stored host.
	assert.Equal(t, "192.168.1.71", prefs.ServerHost())
	_, statErr := os.Stat(conf.Prefs.FilePath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPrefsProvider_WatchServerHost(t *testing.T) {
	prefs, err := NewPrefsProvider(prefsConfig(t), &cacheTestLogger{})
	require.NoError(t, err)

	ch, cancel := prefs.WatchServerHost()
	defer cancel()

	select {
	case host := <-ch:
		assert.Equal(t, "192.168.1.71", host)
	case <-time.After(time.Second):
		t.Fatal("no initial host delivered")
	}

	require.NoError(t, prefs.SetServerHost("172.16.0.2"))

	select {
	case host := <-ch:
		assert.Equal(t, "172.16.0.2", host)
	case <-time.After(time.Second):
		t.Fatal("no updated host delivered")
	}
}

func TestPrefsProvider_LastUserIDLifecycle(t *testing.T) {
	conf := prefsConfig(t)
	prefs, err := NewPrefsProvider(conf, &cacheTestLogger{})
	require.NoError(t, err)

	_, ok := prefs.LastUserID()
	assert.False(t, ok)

	require.NoError(t, prefs.SetLastUserID("User2"))
	id, ok := prefs.LastUserID()
	assert.True(t, ok)
	assert.Equal(t, "User2", id)

	// Survives a restart.
	reloaded, err := NewPrefsProvider(conf, &cacheTestLogger{})
	require.NoError(t, err)
	id, ok = reloaded.LastUserID()
	assert.True(t, ok)
	assert.Equal(t, "User2", id)

	require.NoError(t, reloaded.ClearLastUserID())
	_, ok = reloaded.LastUserID()
	assert.False(t, ok)
}

func TestPrefsProvider_CorruptFileErrors(t *testing.T) {
	conf := prefsConfig(t)
	require.NoError(t, os.WriteFile(conf.Prefs.FilePath, []byte("\t{{not yaml"), 0644))

	_, err := NewPrefsProvider(conf, &cacheTestLogger{})
	assert.Error(t, err)
}
