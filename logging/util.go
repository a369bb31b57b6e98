package logging

import (
	"log/slog"
	"strings"
)

// LevelFromString maps a config string onto a slog level, INFO when
// unset or unrecognized.
func LevelFromString(str *string) slog.Level {
	if str == nil {
		return slog.LevelInfo
	}
	switch strings.ToUpper(*str) {
	case slog.LevelDebug.String():
		return slog.LevelDebug
	case slog.LevelInfo.String():
		return slog.LevelInfo
	case slog.LevelWarn.String():
		return slog.LevelWarn
	case slog.LevelError.String():
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// AttrFormatFromString maps a config string onto a LogAttrFormat,
// JSON when unset or unrecognized.
func AttrFormatFromString(str *string) LogAttrFormat {
	if str != nil && strings.EqualFold(*str, string(LogAttrFormatText)) {
		return LogAttrFormatText
	}
	return LogAttrFormatJSON
}
