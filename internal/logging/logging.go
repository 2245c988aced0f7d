/*
Copyright (c) 2026 The go-pkix Authors

This program is free software; you can redistribute it and/or
modify it under the terms of the GNU General Public License
as published by the Free Software Foundation; version 3
of the License (ONLY this version).

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.
*/

// Package logging wires github.com/rs/zerolog into cmd/cms-tool, trimmed
// from brave-intl-bat-go/libs/logging's SetupLogger/FromContext/LogAndError
// pattern down to what a single CLI process needs: no service-level
// ring-buffered writer or progress-reporting goroutines, just a
// console-or-JSON logger attachable to a context.Context.
package logging

import (
	"context"
	"os"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// New builds a logger: a human-readable console writer when pretty is
// true (interactive use), otherwise newline-delimited JSON to stdout.
func New(pretty bool, level zerolog.Level) *zerolog.Logger {
	var w = os.Stdout
	var l zerolog.Logger
	if pretty {
		l = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	} else {
		l = zerolog.New(w).With().Timestamp().Logger()
	}
	l = l.Level(level)
	return &l
}

// WithContext attaches logger to ctx, the way SetupLogger's
// l.WithContext(ctx) does, so downstream calls can retrieve it without
// threading an explicit parameter through every function signature.
func WithContext(ctx context.Context, logger *zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext retrieves the logger WithContext attached, or a disabled
// logger if none was attached.
func FromContext(ctx context.Context) *zerolog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok && l != nil {
		return l
	}
	disabled := zerolog.Nop()
	return &disabled
}

// LogAndError logs err at Error level through logger (if non-nil) and
// returns err unchanged, for the common "log it, then propagate it" idiom.
func LogAndError(logger *zerolog.Logger, msg string, err error) error {
	if logger != nil {
		logger.Error().Err(err).Msg(msg)
	}
	return err
}
