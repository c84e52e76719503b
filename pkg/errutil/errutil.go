// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

// Package errutil provides helpers for working with coded errors.
//
// Decision errors across the engine use samber/oops codes: UNAUTHORIZED,
// FORBIDDEN, VALIDATION, CONFLICT_RULE, CONFLICT_CYCLE, NOT_FOUND. The
// caller maps each code 1:1 to a response; none is ever downgraded to
// success.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// Decision error codes shared across packages.
const (
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeValidation    = "VALIDATION"
	CodeConflictRule  = "CONFLICT_RULE"
	CodeConflictCycle = "CONFLICT_CYCLE"
	CodeNotFound      = "NOT_FOUND"
)

// HasCode reports whether err is an oops error carrying the given code.
func HasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	return oopsErr.Code() == code
}

// IsNotFound reports whether err carries the NOT_FOUND code.
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsForbidden reports whether err carries the FORBIDDEN code.
func IsForbidden(err error) bool {
	return HasCode(err, CodeForbidden)
}

// LogError logs an error with structured context when it is an oops error,
// falling back to the plain error string otherwise.
func LogError(logger *slog.Logger, msg string, err error) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		logger.Error(msg, "error", err)
		return
	}
	attrs := []any{"error", oopsErr.Error()}
	if code := oopsErr.Code(); code != nil {
		attrs = append(attrs, "code", code)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		attrs = append(attrs, "context", ctx)
	}
	logger.Error(msg, attrs...)
}
