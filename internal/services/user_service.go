package services

import (
	"fmt"
	"io"
	"sync"

	"folivix/internal/models"
	"folivix/internal/providers"
	"folivix/internal/storage"
)

type UserServiceInterface interface {
	Init() error
	GetUsers() []models.User
	GetCurrentUser() (models.User, bool)
	WatchCurrentUser() (<-chan *models.User, func())
	WatchUsers() (<-chan []models.User, func())
	CreateUser(name string, image io.Reader) (models.User, error)
	UpdateUserName(id string, name string) error
	UpdateUserImage(id string, image io.Reader) error
	DeleteUser(id string) error
	SetCurrentUser(id string) error
	Close()
}

// UserService is the registry for local profiles: an in-memory cache over
// the file store plus the active-profile selection. Every mutation goes
// through the store first; the cache is only updated after the store
// succeeded, so observers never see state that outran disk.
type UserService struct {
	store   storage.FileStoreInterface
	prefs   providers.PrefsProviderInterface
	metrics providers.MetricsProviderInterface
	logger  providers.Logger

	mu        sync.RWMutex
	users     []models.User
	currentID string

	current *models.State[*models.User]
	list    *models.State[[]models.User]
}

func NewUserService(store storage.FileStoreInterface, prefs providers.PrefsProviderInterface, metrics providers.MetricsProviderInterface, logger providers.Logger) UserServiceInterface {
	return &UserService{
		store:   store,
		prefs:   prefs,
		metrics: metrics,
		logger:  logger,
		current: models.NewState[*models.User](nil),
		list:    models.NewState[[]models.User](nil),
	}
}

// Init loads the profiles from disk and restores the last active profile
// recorded in preferences, when it still exists.
func (us *UserService) Init() error {
	users, err := us.store.ListUsers()
	if err != nil {
		return err
	}

	us.mu.Lock()
	us.users = users
	if id, ok := us.prefs.LastUserID(); ok {
		for _, u := range users {
			if u.ID == id {
				us.currentID = id
				break
			}
		}
	}
	us.mu.Unlock()

	us.metrics.SetUsersTotal(len(users))
	us.notifyCurrent()
	us.logger.Infof(providers.TypeApp, "Loaded %d users", len(users))
	return nil
}

func (us *UserService) GetUsers() []models.User {
	us.mu.RLock()
	defer us.mu.RUnlock()
	out := make([]models.User, len(us.users))
	copy(out, us.users)
	return out
}

func (us *UserService) GetCurrentUser() (models.User, bool) {
	us.mu.RLock()
	defer us.mu.RUnlock()
	for _, u := range us.users {
		if u.ID == us.currentID {
			return u, true
		}
	}
	return models.User{}, false
}

// WatchCurrentUser emits the active profile on every change, nil when no
// profile is selected. The cancel func must be called on teardown.
func (us *UserService) WatchCurrentUser() (<-chan *models.User, func()) {
	return us.current.Watch()
}

// WatchUsers emits a copy of the profile list on every change.
func (us *UserService) WatchUsers() (<-chan []models.User, func()) {
	return us.list.Watch()
}

// CreateUser allocates a slot, persists the profile and makes it the
// active one.
func (us *UserService) CreateUser(name string, image io.Reader) (models.User, error) {
	user, err := us.store.CreateUser(name, image)
	if err != nil {
		return models.User{}, err
	}

	us.mu.Lock()
	us.users = append(us.users, user)
	us.currentID = user.ID
	count := len(us.users)
	us.mu.Unlock()

	us.metrics.SetUsersTotal(count)
	us.notifyCurrent()
	return user, nil
}

func (us *UserService) UpdateUserName(id string, name string) error {
	if err := us.store.RenameUser(id, name); err != nil {
		return err
	}

	us.mu.Lock()
	for i := range us.users {
		if us.users[i].ID == id {
			us.users[i].Name = name
		}
	}
	us.mu.Unlock()

	us.notifyCurrent()
	return nil
}

func (us *UserService) UpdateUserImage(id string, image io.Reader) error {
	if err := us.store.SetUserImage(id, image); err != nil {
		return err
	}

	// Re-read so the cached ImagePath reflects what landed on disk.
	users, err := us.store.ListUsers()
	if err != nil {
		us.logger.Errorf(providers.TypeApp, "Reloading users after image update failed: %s", err)
		return nil
	}

	us.mu.Lock()
	us.users = users
	us.mu.Unlock()

	us.notifyCurrent()
	return nil
}

// DeleteUser removes the profile and its whole history. When the active
// profile is deleted the selection falls back to the first remaining one,
// or to none.
func (us *UserService) DeleteUser(id string) error {
	if err := us.store.DeleteUser(id); err != nil {
		return err
	}

	us.mu.Lock()
	kept := us.users[:0]
	for _, u := range us.users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	us.users = kept
	if us.currentID == id {
		us.currentID = ""
		if len(us.users) > 0 {
			us.currentID = us.users[0].ID
		}
		us.logger.Infof(providers.TypeApp, "Active user deleted, new active: %q", us.currentID)
	}
	count := len(us.users)
	us.mu.Unlock()

	us.metrics.SetUsersTotal(count)
	us.notifyCurrent()
	return nil
}

// SetCurrentUser changes the selection in memory only. Persisting the
// choice across restarts is the preference store's job.
func (us *UserService) SetCurrentUser(id string) error {
	us.mu.Lock()
	found := false
	for _, u := range us.users {
		if u.ID == id {
			found = true
			break
		}
	}
	if !found {
		us.mu.Unlock()
		return fmt.Errorf("select %s: %w", id, storage.ErrUserNotFound)
	}
	us.currentID = id
	us.mu.Unlock()

	us.notifyCurrent()
	return nil
}

func (us *UserService) Close() {
	us.current.Close()
	us.list.Close()
}

func (us *UserService) notifyCurrent() {
	us.mu.RLock()
	var current *models.User
	for i := range us.users {
		if us.users[i].ID == us.currentID {
			u := us.users[i]
			current = &u
			break
		}
	}
	users := make([]models.User, len(us.users))
	copy(users, us.users)
	us.mu.RUnlock()

	us.current.Set(current)
	us.list.Set(users)
}
