package providers

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/gookit/validate"
	"github.com/spf13/viper"

	"folivix/internal/models"
	"folivix/internal/structures"
)

const (
	serverHostKey = "server.host"
	lastUserIDKey = "lastUser.id"
)

// ErrInvalidServerHost is returned when a host fails the dotted-quad IPv4
// check. Nothing is written to disk in that case.
var ErrInvalidServerHost = errors.New("invalid server address")

type PrefsProviderInterface interface {
	ServerHost() string
	SetServerHost(host string) error
	WatchServerHost() (<-chan string, func())
	LastUserID() (string, bool)
	SetLastUserID(id string) error
	ClearLastUserID() error
}

// PrefsProvider persists the two user-tunable settings (classification
// server host, last active profile) in a small YAML file. Host writes are
// validated before any file I/O happens.
type PrefsProvider struct {
	mu     sync.Mutex
	v      *viper.Viper
	host   *models.State[string]
	logger Logger
}

func NewPrefsProvider(conf *structures.Config, logger Logger) (PrefsProviderInterface, error) {
	v := viper.New()
	v.SetConfigFile(conf.Prefs.FilePath)
	v.SetConfigType("yaml")
	v.SetDefault(serverHostKey, conf.Classifier.DefaultHost)

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read prefs file: %w", err)
		}
		logger.Infof(TypeApp, "No prefs file at %s, using defaults", conf.Prefs.FilePath)
	}

	return &PrefsProvider{
		v:      v,
		host:   models.NewState(v.GetString(serverHostKey)),
		logger: logger,
	}, nil
}

func (p *PrefsProvider) ServerHost() string {
	return p.host.Get()
}

func (p *PrefsProvider) SetServerHost(host string) error {
	if !validate.IsIPv4(host) {
		return fmt.Errorf("%w: %q", ErrInvalidServerHost, host)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.v.Set(serverHostKey, host)
	if err := p.v.WriteConfigAs(p.v.ConfigFileUsed()); err != nil {
		return fmt.Errorf("write prefs file: %w", err)
	}
	p.host.Set(host)
	p.logger.Infof(TypeApp, "Server host set to %s", host)
	return nil
}

func (p *PrefsProvider) WatchServerHost() (<-chan string, func()) {
	return p.host.Watch()
}

func (p *PrefsProvider) LastUserID() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.v.GetString(lastUserIDKey)
	return id, id != ""
}

func (p *PrefsProvider) SetLastUserID(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.v.Set(lastUserIDKey, id)
	if err := p.v.WriteConfigAs(p.v.ConfigFileUsed()); err != nil {
		return fmt.Errorf("write prefs file: %w", err)
	}
	return nil
}

func (p *PrefsProvider) ClearLastUserID() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.v.Set(lastUserIDKey, "")
	if err := p.v.WriteConfigAs(p.v.ConfigFileUsed()); err != nil {
		return fmt.Errorf("write prefs file: %w", err)
	}
	return nil
}
