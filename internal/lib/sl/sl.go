// Package sl contains helpers for the slog structured logger.
// The main goal is to simplify building structured log fields,
// for example when attaching error information.
package sl

import "log/slog"

// Err returns a slog.Attr with the key "error" and the error text as value.
// Convenient for uniform error output in logs.
//
// Example:
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
