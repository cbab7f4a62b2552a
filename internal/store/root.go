// Package store is the client-side state container: namespaced modules
// whose actions call the backend, record outcomes through synchronous
// mutations, and expose derived getters.
package store

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/bobmcallan/finance-portal/internal/common"
	"github.com/bobmcallan/finance-portal/internal/interfaces"
	"github.com/bobmcallan/finance-portal/internal/models"
)

// State is a snapshot of the global flags.
type State struct {
	Loading  bool   `json:"loading"`
	Error    string `json:"error,omitempty"`
	DarkMode bool   `json:"darkMode"`
}

// Root holds the state shared by every module: the loading flag, the last
// error message and the dark-mode preference. Loading stays raised while any
// action is in flight.
type Root struct {
	mu       sync.RWMutex
	inFlight int
	errMsg   string
	darkMode bool

	kv     interfaces.KeyValueStorage
	logger *common.Logger
}

// NewRoot creates the root state. kv may be nil, in which case preferences
// live only in memory.
func NewRoot(kv interfaces.KeyValueStorage, logger *common.Logger) *Root {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Root{kv: kv, logger: logger}
}

// Action scopes one store action. Begin raises the loading flag; End lowers
// it exactly once, however the action exits.
type Action struct {
	root  *Root
	name  string
	start time.Time
	once  sync.Once
}

// Begin marks the start of an action. Callers must defer End.
func (r *Root) Begin(name string) *Action {
	r.mu.Lock()
	r.inFlight++
	r.mu.Unlock()

	r.logger.Debug().Str("action", name).Msg("Store action started")
	return &Action{root: r, name: name, start: time.Now()}
}

// End lowers the loading flag. Safe to call more than once.
func (a *Action) End() {
	a.once.Do(func() {
		a.root.mu.Lock()
		if a.root.inFlight > 0 {
			a.root.inFlight--
		}
		a.root.mu.Unlock()

		a.root.logger.Debug().Str("action", a.name).Dur("duration", time.Since(a.start)).Msg("Store action finished")
	})
}

// Fail records err's message as the global error and returns err unchanged.
func (a *Action) Fail(err error) error {
	if err == nil {
		return nil
	}
	a.root.mu.Lock()
	a.root.errMsg = err.Error()
	a.root.mu.Unlock()

	a.root.logger.Warn().Str("action", a.name).Err(err).Msg("Store action failed")
	return err
}

// Loading reports whether any action is in flight.
func (r *Root) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.inFlight > 0
}

// Error returns the last recorded error message, or "".
func (r *Root) Error() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.errMsg
}

// ClearError resets the recorded error.
func (r *Root) ClearError() {
	r.mu.Lock()
	r.errMsg = ""
	r.mu.Unlock()
}

// DarkMode returns the dark-mode preference.
func (r *Root) DarkMode() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.darkMode
}

// Snapshot returns the global flags.
func (r *Root) Snapshot() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return State{Loading: r.inFlight > 0, Error: r.errMsg, DarkMode: r.darkMode}
}

// ToggleDarkMode flips the preference and persists it. The in-memory value
// flips even when persisting fails; the error is still returned.
func (r *Root) ToggleDarkMode(ctx context.Context) (bool, error) {
	r.mu.Lock()
	r.darkMode = !r.darkMode
	on := r.darkMode
	r.mu.Unlock()

	if err := r.savePreference(ctx, models.PrefDarkMode, strconv.FormatBool(on)); err != nil {
		return on, err
	}
	return on, nil
}

// LoadPreferences restores persisted preferences into the root state.
// Missing keys keep their defaults.
func (r *Root) LoadPreferences(ctx context.Context) (models.Preferences, error) {
	prefs := models.Preferences{SelectedCurrency: DefaultCurrency}
	if r.kv == nil {
		return prefs, nil
	}

	v, ok, err := r.loadPreference(ctx, models.PrefDarkMode)
	if err != nil {
		return prefs, err
	}
	if ok {
		on, err := strconv.ParseBool(v)
		if err != nil {
			r.logger.Warn().Str("value", v).Msg("Dropping malformed dark mode preference")
			r.dropPreference(ctx, models.PrefDarkMode)
		} else {
			prefs.DarkMode = on
		}
	}

	v, ok, err = r.loadPreference(ctx, models.PrefSelectedCurrency)
	if err != nil {
		return prefs, err
	}
	if ok {
		if validCurrency(v) {
			prefs.SelectedCurrency = v
		} else {
			r.logger.Warn().Str("value", v).Msg("Dropping unsupported currency preference")
			r.dropPreference(ctx, models.PrefSelectedCurrency)
		}
	}

	r.mu.Lock()
	r.darkMode = prefs.DarkMode
	r.mu.Unlock()

	return prefs, nil
}

// loadPreference reads one key; a missing key is not an error.
func (r *Root) loadPreference(ctx context.Context, key string) (string, bool, error) {
	v, err := r.kv.Get(ctx, key)
	if errors.Is(err, interfaces.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *Root) dropPreference(ctx context.Context, key string) {
	if err := r.kv.Delete(ctx, key); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("Failed to drop preference")
	}
}

func (r *Root) savePreference(ctx context.Context, key, value string) error {
	if r.kv == nil {
		return nil
	}
	if err := r.kv.Set(ctx, key, value); err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("Failed to persist preference")
		return err
	}
	return nil
}
