package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyConfigPath   = "config_path"
	KeyResolutionID = "resolution_id"
	KeyBase         = "base"
	KeyMode         = "mode"
	KeyPlugin       = "plugin"
	KeyAlias        = "alias"
	KeyAliasTarget  = "alias_target"
	KeyField        = "field"
	KeyEnvFile      = "env_file"
	KeyDurationMS   = "duration_ms"
	KeyError        = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func ConfigPath(p string) slog.Attr       { return slog.String(KeyConfigPath, p) }
func ResolutionID(id string) slog.Attr    { return slog.String(KeyResolutionID, id) }
func Base(b string) slog.Attr             { return slog.String(KeyBase, b) }
func Mode(m string) slog.Attr             { return slog.String(KeyMode, m) }
func Plugin(name string) slog.Attr        { return slog.String(KeyPlugin, name) }
func Alias(key string) slog.Attr          { return slog.String(KeyAlias, key) }
func AliasTarget(target string) slog.Attr { return slog.String(KeyAliasTarget, target) }
func Field(f string) slog.Attr            { return slog.String(KeyField, f) }
func EnvFile(p string) slog.Attr          { return slog.String(KeyEnvFile, p) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
