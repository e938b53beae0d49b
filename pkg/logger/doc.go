// Package logger provides slog attribute helpers shared across the module.
//
// Helpers use the empty Attr pattern for nil safety, so call sites never need
// explicit nil checks:
//
//	log.Warn("send failed", logger.Error(err), logger.Event("_TOAST"))
package logger
