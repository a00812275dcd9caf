package store

import (
	"context"
	"encoding/json"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/fallback"
	"github.com/rs/zerolog"
)

// Settings keys shared with the presentation processes
const (
	KeyWorkspace = "workspace"
	KeyExeFile   = "exeFile"
	KeyProxy     = "proxy"
	KeyUseProxy  = "useProxy"
	KeyPromptTip = "tip"
)

// settingsPrefix namespaces preference keys away from the download list.
const settingsPrefix = "settings:"

// Defaults holds the values returned for settings that were never stored
type Defaults struct {
	Workspace string
	ExeFile   string
	PromptTip bool
}

// Settings is the preferences view over a Store. Values are JSON encoded so
// strings, booleans and numbers round-trip unchanged.
//
// Read failures are logged and answered with the empty default; write failures
// are logged and reported as false, never as an error.
type Settings struct {
	store    Store
	defaults Defaults
	logger   zerolog.Logger
	fallback fallback.Fallback[any]
}

// NewSettings creates a settings view over s
func NewSettings(s Store, defaults Defaults, logger zerolog.Logger) *Settings {
	return &Settings{
		store:    s,
		defaults: defaults,
		logger:   logger,
		fallback: fallback.NewWithResult[any](""),
	}
}

// Get returns the stored value for key, or "" when the key is unset or cannot be read.
func (s *Settings) Get(ctx context.Context, key string) any {
	value, _ := failsafe.Get(func() (any, error) {
		raw, ok, err := s.store.Get(ctx, settingsPrefix+key)
		if err != nil {
			ErrorsTotal.WithLabelValues("get").Inc()
			s.logger.Info().Err(err).Str("key", key).Msg("Failed to read setting from store")
			return nil, err
		}
		if !ok {
			return "", nil
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			ErrorsTotal.WithLabelValues("get").Inc()
			s.logger.Info().Err(err).Str("key", key).Msg("Stored setting is not valid JSON")
			return nil, err
		}
		return v, nil
	}, s.fallback)
	return value
}

// Set persists value under key. A failed write is logged and reported as false.
func (s *Settings) Set(ctx context.Context, key string, value any) bool {
	raw, err := json.Marshal(value)
	if err == nil {
		err = s.store.Set(ctx, settingsPrefix+key, raw)
	}
	if err != nil {
		ErrorsTotal.WithLabelValues("set").Inc()
		s.logger.Info().Err(err).Str("key", key).Msg("Failed to write setting to store")
		return false
	}
	return true
}

// GetString returns the setting as a string, or def when unset or not a string.
func (s *Settings) GetString(ctx context.Context, key, def string) string {
	if v, ok := s.Get(ctx, key).(string); ok && v != "" {
		return v
	}
	return def
}

// GetBool returns the setting as a bool, or def when unset or not a bool.
func (s *Settings) GetBool(ctx context.Context, key string, def bool) bool {
	if v, ok := s.Get(ctx, key).(bool); ok {
		return v
	}
	return def
}

// Workspace returns the directory downloads are written to
func (s *Settings) Workspace(ctx context.Context) string {
	return s.GetString(ctx, KeyWorkspace, s.defaults.Workspace)
}

// ExeFile returns the name of the selected downloader executable
func (s *Settings) ExeFile(ctx context.Context) string {
	return s.GetString(ctx, KeyExeFile, s.defaults.ExeFile)
}

// Proxy returns the proxy address, or "" when none is configured
func (s *Settings) Proxy(ctx context.Context) string {
	return s.GetString(ctx, KeyProxy, "")
}

// UseProxy reports whether the proxy toggle is on
func (s *Settings) UseProxy(ctx context.Context) bool {
	return s.GetBool(ctx, KeyUseProxy, false)
}

// PromptTip reports whether a notification is wanted when a download completes
func (s *Settings) PromptTip(ctx context.Context) bool {
	return s.GetBool(ctx, KeyPromptTip, s.defaults.PromptTip)
}

type zerologAdapter struct {
	logger zerolog.Logger
}

// LoggerFrom adapts a zerolog logger to the backend Logger interface
func LoggerFrom(l zerolog.Logger) Logger {
	return zerologAdapter{logger: l}
}

func (z zerologAdapter) Error(msg string, err error) {
	z.logger.Error().Err(err).Msg(msg)
}
