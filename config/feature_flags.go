package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages feature toggles. Flags let the front office turn
// individual billing behaviours on and off without a redeploy: reminder
// dispatch can be paused during holidays, the cache layer disabled while
// debugging a stale-snapshot report.
type FeatureFlags struct {
	mu sync.RWMutex

	features map[string]*Feature
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Time-based activation
	EnabledFrom  *time.Time
	EnabledUntil *time.Time
}

// Predefined feature flag names.
const (
	// === Reminder Features ===
	FeatureRemindersAutoSend  = "reminders.auto_send"  // scheduled morning dispatch
	FeatureRemindersLookAhead = "reminders.look_ahead" // include upcoming cycles, not just arrears

	// === Roster Features ===
	FeatureRosterCache     = "roster.cache"      // serve roster queries from the daily snapshot
	FeatureRosterCacheWarm = "roster.cache_warm" // midnight snapshot rebuild job

	// === Event Features ===
	FeatureEventsRedisBus = "events.redis_bus" // fan events out over Redis pub/sub
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features: make(map[string]*Feature),
	}

	ff.initializeDefaults()
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	ff.features[FeatureRemindersAutoSend] = &Feature{
		Name:        FeatureRemindersAutoSend,
		Description: "Dispatch payment reminders on schedule",
		Enabled:     true,
	}

	ff.features[FeatureRemindersLookAhead] = &Feature{
		Name:        FeatureRemindersLookAhead,
		Description: "Remind about upcoming cycles, not only arrears",
		Enabled:     true,
	}

	ff.features[FeatureRosterCache] = &Feature{
		Name:        FeatureRosterCache,
		Description: "Serve roster queries from the daily snapshot cache",
		Enabled:     true,
	}

	ff.features[FeatureRosterCacheWarm] = &Feature{
		Name:        FeatureRosterCacheWarm,
		Description: "Rebuild the roster snapshot right after midnight",
		Enabled:     true,
	}

	ff.features[FeatureEventsRedisBus] = &Feature{
		Name:        FeatureEventsRedisBus,
		Description: "Fan domain events out over Redis pub/sub",
		Enabled:     false, // in-memory bus is the single-process default
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false
// Example: FEATURE_REMINDERS_AUTO_SEND=false
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		if val := os.Getenv(envKey); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = b
			}
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "reminders.auto_send" -> "FEATURE_REMINDERS_AUTO_SEND"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is currently enabled.
func (ff *FeatureFlags) IsEnabled(featureName string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	if !feature.Enabled {
		return false
	}

	// Check time-based activation
	now := time.Now()
	if feature.EnabledFrom != nil && now.Before(*feature.EnabledFrom) {
		return false
	}
	if feature.EnabledUntil != nil && now.After(*feature.EnabledUntil) {
		return false
	}

	return true
}

// EnableFeature enables a feature. Thread-safe for live updates.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.setEnabled(featureName, true)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.setEnabled(featureName, false)
}

func (ff *FeatureFlags) setEnabled(featureName string, enabled bool) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	feature.Enabled = enabled
	return nil
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Errors ---

var ErrFeatureNotFound = &FeatureFlagError{Message: "feature not found"}

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
