// Package session owns the process-wide authentication state. The Manager is
// its only writer: every lifecycle operation (restore, signup, verify, login,
// logout, subscription update) funnels through it, orchestrating the remote
// gateway, the local cache, and the entitlement reconciler in a fixed order.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aurora-mobile/aurora-auth/internal/domain/entity"
	"github.com/aurora-mobile/aurora-auth/internal/entitlement"
	"github.com/aurora-mobile/aurora-auth/internal/gateway"
	"github.com/aurora-mobile/aurora-auth/internal/infrastructure/cache"
)

var (
	// ErrOperationInFlight is returned when a lifecycle operation is issued
	// while another one is still running. Operations are rejected rather
	// than queued.
	ErrOperationInFlight = errors.New("another session operation is in flight")

	// ErrNotAuthenticated guards operations that require a signed-in user.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Listener receives a state snapshot after every transition.
type Listener func(State)

// Manager is the auth state machine plus the read-only facade consumers use.
type Manager struct {
	gw     gateway.Gateway
	store  cache.Store
	logger *logrus.Logger
	now    func() time.Time

	// opMu serializes lifecycle operations: at most one in flight.
	opMu sync.Mutex

	mu        sync.RWMutex
	state     State
	listeners []Listener
}

func NewManager(gw gateway.Gateway, store cache.Store, logger *logrus.Logger) *Manager {
	return &Manager{
		gw:     gw,
		store:  store,
		logger: logger,
		now:    time.Now,
		state:  State{Status: StatusUnauthenticated},
	}
}

// Snapshot returns a copy of the current state. The contained User is cloned
// so readers can never mutate manager-owned data.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneState(m.state)
}

// CurrentUser returns the signed-in user, or nil.
func (m *Manager) CurrentUser() *entity.User {
	return m.Snapshot().User
}

// IsSignedIn reports whether a user is present.
func (m *Manager) IsSignedIn() bool {
	return m.Snapshot().SignedIn()
}

// IsLoading reports whether a lifecycle operation is in flight.
func (m *Manager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Loading
}

// OnChange registers a listener invoked after every state transition. The
// listener runs on the operation's goroutine and must not call back into the
// manager's lifecycle operations.
func (m *Manager) OnChange(fn Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Restore validates a persisted session at process start. A missing cache
// entry resolves to Unauthenticated without touching the gateway; a token the
// provider rejects clears both cache slots. Either way the outcome is a clean
// state, which is why Restore itself never fails on a stale session. This is
// the one place self-healing happens silently.
func (m *Manager) Restore(ctx context.Context) error {
	if !m.opMu.TryLock() {
		return ErrOperationInFlight
	}
	defer m.opMu.Unlock()

	m.set(func(s *State) {
		s.Status = StatusRestoring
		s.User = nil
		s.PendingEmail = ""
		s.Loading = true
	})
	defer m.clearLoading()

	token := m.cachedString(ctx, cache.KeyToken)
	userRaw, _, _ := m.store.Get(ctx, cache.KeyUser)
	if token == "" || len(userRaw) == 0 {
		m.set(func(s *State) { s.Status = StatusUnauthenticated })
		return nil
	}

	if _, err := m.gw.SessionUser(ctx, token); err != nil {
		m.logger.WithError(err).Info("persisted token rejected, clearing session cache")
		m.removeSessionSlots(ctx)
		m.set(func(s *State) { s.Status = StatusUnauthenticated })
		return nil
	}

	// The cached projection is trusted as-is; the profile row is not
	// re-fetched on restore.
	var u entity.User
	if err := json.Unmarshal(userRaw, &u); err != nil {
		m.logger.WithError(err).Warn("cached user unreadable, clearing session cache")
		m.removeSessionSlots(ctx)
		m.set(func(s *State) { s.Status = StatusUnauthenticated })
		return nil
	}

	m.set(func(s *State) {
		s.Status = StatusAuthenticated
		s.User = &u
	})
	return nil
}

// SignUp creates a principal and a free-tier profile row, then parks the
// state in PendingVerification until the emailed code is confirmed. A failed
// profile creation is tolerated: the principal already exists upstream and
// verification repairs the missing row later.
func (m *Manager) SignUp(ctx context.Context, email, password, fullName string) error {
	if !m.opMu.TryLock() {
		return ErrOperationInFlight
	}
	defer m.opMu.Unlock()

	m.setLoading()
	defer m.clearLoading()

	userID, err := m.gw.SignUp(ctx, email, password, fullName)
	if err != nil {
		return err
	}

	profile := &entity.User{
		ID:           userID,
		Email:        email,
		FullName:     fullName,
		Subscription: entity.TierFree,
		CreatedAt:    m.now().UTC(),
	}
	if _, err := m.gw.CreateProfile(ctx, profile); err != nil {
		m.logger.WithError(err).WithField("user_id", userID).
			Warn("profile creation failed at signup, will repair at verification")
	}

	m.cachePut(ctx, cache.KeyPendingEmail, []byte(email))
	m.cachePut(ctx, cache.KeyPendingUserID, []byte(userID))

	m.set(func(s *State) {
		s.Status = StatusPendingVerification
		s.PendingEmail = email
	})
	return nil
}

// VerifyCode exchanges the one-time code for a session and promotes the
// state to Authenticated. If no profile row exists yet (the signup-time
// inconsistency window) it is created here with the free tier. Failures
// before the final transition leave the state untouched, so the caller can
// simply retry.
func (m *Manager) VerifyCode(ctx context.Context, email, code string) error {
	if !m.opMu.TryLock() {
		return ErrOperationInFlight
	}
	defer m.opMu.Unlock()

	m.setLoading()
	defer m.clearLoading()

	sess, err := m.gw.VerifyCode(ctx, email, code)
	if err != nil {
		return err
	}

	user, err := m.gw.FetchProfile(ctx, sess.UserID)
	if errors.Is(err, gateway.ErrProfileNotFound) {
		user, err = m.gw.CreateProfile(ctx, &entity.User{
			ID:           sess.UserID,
			Email:        email,
			FullName:     "User",
			Subscription: entity.TierFree,
			CreatedAt:    m.now().UTC(),
		})
	}
	if err != nil {
		return err
	}

	m.persistSession(ctx, sess.AccessToken, user)
	m.cacheRemove(ctx, cache.KeyPendingEmail)
	m.cacheRemove(ctx, cache.KeyPendingUserID)

	m.set(func(s *State) {
		s.Status = StatusAuthenticated
		s.User = user
		s.PendingEmail = ""
	})
	return nil
}

// Login authenticates with credentials, reconciles the stored subscription
// against the current time, and promotes to Authenticated. The state is never
// promoted without a profile row: a valid principal with unknown entitlement
// is reported as a failure instead.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if !m.opMu.TryLock() {
		return ErrOperationInFlight
	}
	defer m.opMu.Unlock()

	m.setLoading()
	defer m.clearLoading()

	sess, err := m.gw.Login(ctx, email, password)
	if err != nil {
		return err
	}

	profile, err := m.gw.FetchProfile(ctx, sess.UserID)
	if err != nil {
		return err
	}

	effective, writeBack := entitlement.Reconcile(*profile, m.now())
	if writeBack {
		// Downgrade write-back is fire-and-forget: the in-memory profile is
		// already downgraded for this session, so a write failure must not
		// block the login.
		tier := entity.TierFree
		patch := gateway.ProfilePatch{Tier: &tier, ClearExpiry: true}
		if err := m.gw.UpdateProfile(ctx, sess.UserID, patch); err != nil {
			m.logger.WithError(err).WithField("user_id", sess.UserID).
				Warn("subscription downgrade write-back failed")
		}
	}

	m.persistSession(ctx, sess.AccessToken, &effective)

	m.set(func(s *State) {
		s.Status = StatusAuthenticated
		s.User = &effective
		s.PendingEmail = ""
	})
	return nil
}

// Logout always lands in Unauthenticated. Remote invalidation is best effort
// and its failure is ignored; the local cache slots are cleared regardless.
func (m *Manager) Logout(ctx context.Context) error {
	if !m.opMu.TryLock() {
		return ErrOperationInFlight
	}
	defer m.opMu.Unlock()

	m.setLoading()
	defer m.clearLoading()

	if token := m.cachedString(ctx, cache.KeyToken); token != "" {
		if err := m.gw.Logout(ctx, token); err != nil {
			m.logger.WithError(err).Info("remote logout failed, clearing local session anyway")
		}
	}
	m.removeSessionSlots(ctx)

	m.set(func(s *State) {
		s.Status = StatusUnauthenticated
		s.User = nil
		s.PendingEmail = ""
	})
	return nil
}

// UpdateSubscription writes the new tier (and expiry, for premium) to the
// profile row. Unlike login's downgrade write-back this is an upgrade path:
// nothing is mutated locally until the remote write is confirmed.
func (m *Manager) UpdateSubscription(ctx context.Context, tier entity.Tier, expiry *time.Time) error {
	if !m.opMu.TryLock() {
		return ErrOperationInFlight
	}
	defer m.opMu.Unlock()

	m.setLoading()
	defer m.clearLoading()

	snap := m.Snapshot()
	if !snap.SignedIn() {
		return ErrNotAuthenticated
	}

	patch := gateway.ProfilePatch{Tier: &tier}
	if expiry != nil {
		e := expiry.UTC()
		patch.Expiry = &e
	} else {
		patch.ClearExpiry = true
	}
	if err := m.gw.UpdateProfile(ctx, snap.User.ID, patch); err != nil {
		return err
	}

	updated := *snap.User
	updated.Subscription = tier
	if expiry != nil {
		e := expiry.UTC()
		updated.SubscriptionExpiry = &e
	} else {
		updated.SubscriptionExpiry = nil
	}
	m.cacheUser(ctx, &updated)

	m.set(func(s *State) { s.User = &updated })
	return nil
}

// --- internals ---

func (m *Manager) set(mut func(*State)) {
	m.mu.Lock()
	mut(&m.state)
	snap := cloneState(m.state)
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

func (m *Manager) setLoading() {
	m.set(func(s *State) { s.Loading = true })
}

func (m *Manager) clearLoading() {
	m.set(func(s *State) { s.Loading = false })
}

// cachedString reads a slot, treating every failure as a miss.
func (m *Manager) cachedString(ctx context.Context, key string) string {
	v, ok, err := m.store.Get(ctx, key)
	if err != nil || !ok {
		return ""
	}
	return string(v)
}

func (m *Manager) cachePut(ctx context.Context, key string, value []byte) {
	if err := m.store.Set(ctx, key, value); err != nil {
		m.logger.WithError(err).WithField("key", key).Warn("session cache write failed")
	}
}

func (m *Manager) cacheRemove(ctx context.Context, key string) {
	if err := m.store.Remove(ctx, key); err != nil {
		m.logger.WithError(err).WithField("key", key).Warn("session cache remove failed")
	}
}

func (m *Manager) cacheUser(ctx context.Context, u *entity.User) {
	b, err := json.Marshal(u)
	if err != nil {
		m.logger.WithError(err).Warn("user serialization failed")
		return
	}
	m.cachePut(ctx, cache.KeyUser, b)
}

func (m *Manager) persistSession(ctx context.Context, token string, u *entity.User) {
	m.cachePut(ctx, cache.KeyToken, []byte(token))
	m.cacheUser(ctx, u)
}

func (m *Manager) removeSessionSlots(ctx context.Context) {
	m.cacheRemove(ctx, cache.KeyToken)
	m.cacheRemove(ctx, cache.KeyUser)
}

func cloneState(s State) State {
	out := s
	if s.User != nil {
		u := *s.User
		if s.User.SubscriptionExpiry != nil {
			e := *s.User.SubscriptionExpiry
			u.SubscriptionExpiry = &e
		}
		out.User = &u
	}
	return out
}
