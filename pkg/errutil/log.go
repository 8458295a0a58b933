// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package errutil holds helpers for logging and asserting oops errors.
package errutil

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs err at ERROR level together with attrs.
// For oops errors the code and context map are added as separate attributes
// so they stay queryable in JSON output. A nil logger falls back to slog.Default.
func LogError(ctx context.Context, logger *slog.Logger, msg string, err error, attrs ...any) {
	if err == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	attrs = append(attrs, "error", err.Error())
	if code := Code(err); code != "" {
		attrs = append(attrs, "code", code)
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		if errCtx := oopsErr.Context(); len(errCtx) > 0 {
			attrs = append(attrs, "context", errCtx)
		}
	}
	logger.ErrorContext(ctx, msg, attrs...)
}

// Code returns the oops code attached to err, or "" if there is none.
// oops reports the innermost code of a wrapped chain.
func Code(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code := fmt.Sprint(oopsErr.Code())
	if code == "<nil>" {
		return ""
	}
	return code
}
