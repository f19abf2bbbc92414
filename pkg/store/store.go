// Package store holds the client-side session state: who is signed in, their
// profile and settings, onboarding progress and the local notification feed.
//
// A Store is built once with New and passed to its consumers. Reads go through
// State; the action methods are the only way to mutate it. Actions that touch
// the remote backend run the remote call outside the store lock and apply the
// result afterwards, so concurrent actions resolve as last-completed-write-wins.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/0xAcousticbridge/GAID/internal/logger"
	"github.com/0xAcousticbridge/GAID/internal/metrics"
	"github.com/0xAcousticbridge/GAID/internal/models"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
)

// ErrNotAuthenticated is returned by actions that need a signed-in user
var ErrNotAuthenticated = remote.ErrNotAuthenticated

// Persister saves and restores the settings partition
type Persister interface {
	Load() (*Settings, error)
	Save(Settings) error
}

// Listener receives a state snapshot after every mutation
type Listener func(State)

// Option configures a Store
type Option func(*Store)

// WithLogger sets the store logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = logger.OrNop(l) }
}

// WithPersister enables the settings partition
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithClock overrides time.Now for notification timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides notification id generation
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// Store is the session state container
type Store struct {
	client    remote.Client
	persister Persister
	log       *zap.Logger
	now       func() time.Time
	newID     func() string

	mu    sync.RWMutex
	state State
	rev   uint64

	// saves run one at a time and never go back to an older revision
	persistMu sync.Mutex
	savedRev  uint64

	subMu       sync.Mutex
	listeners   map[int]Listener
	nextSub     int
	notifiedRev uint64
}

// New creates a store on client. With a persister, saved settings are
// restored before New returns; every other field starts from its default.
func New(client remote.Client, opts ...Option) *Store {
	s := &Store{
		client:    client,
		log:       zap.NewNop(),
		now:       time.Now,
		newID:     uuid.NewString,
		state:     initialState(),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.persister != nil {
		saved, err := s.persister.Load()
		if err != nil {
			s.log.Warn("Failed to restore persisted settings", zap.Error(err))
		} else if saved != nil {
			s.state.Settings = saved.Normalize()
			s.log.Debug("Restored persisted settings",
				zap.String("theme", string(saved.Theme)),
				zap.String("font_size", string(saved.FontSize)))
		}
	}

	return s
}

// State returns a snapshot of the current state
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers fn for change notification and returns its release func
func (s *Store) Subscribe(fn Listener) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	n := len(s.listeners)
	s.subMu.Unlock()
	metrics.Get().StoreSubscribers.Set(float64(n))

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.listeners, id)
			n := len(s.listeners)
			s.subMu.Unlock()
			metrics.Get().StoreSubscribers.Set(float64(n))
		})
	}
}

// update applies fn under the lock, then persists and notifies outside it.
// Each mutation gets a revision; a snapshot older than one already saved or
// delivered is dropped.
func (s *Store) update(action string, fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	s.rev++
	rev := s.rev
	snap := s.state.clone()
	s.mu.Unlock()

	metrics.ObserveStoreAction(action, nil)
	metrics.Get().UnreadNotifications.Set(float64(snap.Notifications.Unread))
	s.persist(rev, snap.Settings)
	s.notify(rev, snap)
}

func (s *Store) persist(rev uint64, settings Settings) {
	if s.persister == nil {
		return
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if rev < s.savedRev {
		return
	}
	s.savedRev = rev
	if err := s.persister.Save(settings); err != nil {
		s.log.Warn("Failed to persist settings", zap.Error(err))
	}
}

func (s *Store) notify(rev uint64, snap State) {
	s.subMu.Lock()
	if rev < s.notifiedRev {
		s.subMu.Unlock()
		return
	}
	s.notifiedRev = rev
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) currentUser() *remote.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.User == nil {
		return nil
	}
	u := *s.state.User
	return &u
}

// fail logs a remote failure and returns it unchanged
func (s *Store) fail(action string, err error, fields ...zap.Field) error {
	metrics.ObserveStoreAction(action, err)
	s.log.Error("Store action failed", append(fields, zap.String("action", action), zap.Error(err))...)
	return err
}

// SetUser replaces the session identity
func (s *Store) SetUser(user *remote.User) {
	s.update("set_user", func(st *State) {
		if user == nil {
			st.User = nil
			return
		}
		u := *user
		u.UserMetadata = copyMap(user.UserMetadata)
		st.User = &u
	})
}

// SetProfile replaces the profile and re-derives onboarding completion from it
func (s *Store) SetProfile(profile *models.Profile) {
	s.update("set_profile", func(st *State) {
		if profile == nil {
			st.Profile = nil
			st.Onboarding.Completed = false
			return
		}
		p := *profile
		p.Extra = copyMap(profile.Extra)
		st.Profile = &p
		st.Onboarding.Completed = p.OnboardingCompleted
	})
}

// UpdateSettings merges the patch into the current settings. It never writes remotely.
func (s *Store) UpdateSettings(patch SettingsPatch) {
	s.update("update_settings", func(st *State) {
		st.Settings = st.Settings.Apply(patch)
	})
}

// SetOnboardingStep sets the local onboarding step
func (s *Store) SetOnboardingStep(step int) {
	s.update("set_onboarding_step", func(st *State) {
		st.Onboarding.Step = step
	})
}

// CompleteOnboarding marks onboarding done on the remote profile, then locally.
// On error the local state is left as it was.
func (s *Store) CompleteOnboarding(ctx context.Context) error {
	user := s.currentUser()
	if user == nil {
		return s.fail("complete_onboarding", ErrNotAuthenticated)
	}

	err := s.client.From("profiles").
		Eq("id", user.ID).
		Update(ctx, map[string]interface{}{"onboarding_completed": true}, nil)
	if err != nil {
		return s.fail("complete_onboarding", err, logger.WithUserID(user.ID))
	}

	s.update("complete_onboarding", func(st *State) {
		st.Onboarding.Completed = true
		if st.Profile != nil {
			p := *st.Profile
			p.OnboardingCompleted = true
			st.Profile = &p
		}
	})
	s.log.Info("Onboarding completed", logger.WithUserID(user.ID))
	return nil
}

// FetchUserData loads the signed-in user's profile and settings rows. A missing
// profile is created; a missing settings row keeps the current settings.
// Without a user it does nothing.
func (s *Store) FetchUserData(ctx context.Context) error {
	user := s.currentUser()
	if user == nil {
		return nil
	}

	profile, err := s.fetchProfile(ctx, user.ID)
	if err != nil {
		return s.fail("fetch_user_data", err, logger.WithUserID(user.ID), logger.WithTable("profiles"))
	}

	var row models.UserSettings
	found, err := s.client.From("user_settings").Eq("user_id", user.ID).MaybeSingle(ctx, &row)
	if err != nil {
		return s.fail("fetch_user_data", err, logger.WithUserID(user.ID), logger.WithTable("user_settings"))
	}

	s.update("fetch_user_data", func(st *State) {
		st.Profile = profile
		st.Onboarding = Onboarding{Step: 0, Completed: profile.OnboardingCompleted}
		if found {
			st.Settings = st.Settings.FillFrom(&row)
		}
	})
	s.log.Debug("Fetched user data",
		logger.WithUserID(user.ID),
		zap.Bool("settings_row", found),
		zap.Bool("onboarding_completed", profile.OnboardingCompleted))
	return nil
}

func (s *Store) fetchProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := s.client.From("profiles").Eq("id", userID).Single(ctx, &profile)
	if err == nil {
		return &profile, nil
	}
	if !remote.IsNoRows(err) {
		return nil, err
	}

	s.log.Info("Creating missing profile", logger.WithUserID(userID))
	err = s.client.From("profiles").Upsert(ctx,
		map[string]interface{}{"id": userID},
		[]string{"id"},
		&profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Logout signs out remotely and resets the store. On error nothing is reset.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.client.Auth().SignOut(ctx); err != nil {
		return s.fail("logout", err)
	}
	s.Reset()
	return nil
}

// Reset restores the initial state, keeping the current theme
func (s *Store) Reset() {
	s.update("reset", func(st *State) {
		theme := st.Settings.Theme
		*st = initialState()
		st.Settings.Theme = theme
	})
}

// AddNotification prepends an unread item to the feed and returns it
func (s *Store) AddNotification(kind, message string) Notification {
	n := Notification{
		ID:        s.newID(),
		Kind:      kind,
		Message:   message,
		CreatedAt: s.now(),
	}
	s.update("add_notification", func(st *State) {
		items := make([]Notification, 0, len(st.Notifications.Items)+1)
		items = append(items, n)
		st.Notifications.Items = append(items, st.Notifications.Items...)
		st.Notifications.Unread++
	})
	return n
}

// MarkNotificationAsRead marks an unread item read. Unknown or read ids are a no-op.
func (s *Store) MarkNotificationAsRead(id string) {
	s.mu.RLock()
	idx := -1
	for i, n := range s.state.Notifications.Items {
		if n.ID == id && !n.Read {
			idx = i
			break
		}
	}
	s.mu.RUnlock()
	if idx < 0 {
		return
	}

	s.update("mark_notification_read", func(st *State) {
		for i := range st.Notifications.Items {
			if st.Notifications.Items[i].ID != id || st.Notifications.Items[i].Read {
				continue
			}
			items := append([]Notification(nil), st.Notifications.Items...)
			items[i].Read = true
			st.Notifications.Items = items
			st.Notifications.Unread--
			if st.Notifications.Unread < 0 {
				st.Notifications.Unread = 0
			}
			return
		}
	})
}
