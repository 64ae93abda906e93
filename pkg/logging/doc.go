// Package logging provides structured logging utilities for watchboard components.
//
// # Overview
//
// This package wraps the standard library slog package with watchboard-specific defaults
// and conventions for consistent logging across all components. It supports
// environment-based log level configuration, module/version context injection,
// and automatic source location tracking for debug logs.
//
// # Features
//
//   - Structured JSON logging to stderr
//   - Environment-based log level configuration (LOG_LEVEL)
//   - Automatic module and version context
//   - Source location tracking for debug logs
//   - Flexible log level parsing
//   - Integration with standard library log package
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: Detailed diagnostic information with source location
//   - INFO: General informational messages (default)
//   - WARN/WARNING: Warning messages for potentially problematic situations
//   - ERROR: Error messages for failures requiring attention
//
// # Usage
//
// Setting the default logger (recommended):
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("watchboard", "v1.0.0")
//	    defer slog.Info("application started")
//
//	    // Use slog as normal
//	    slog.Info("processing request", "id", "req-123")
//	    slog.Debug("detailed state", "data", complexObject)
//	    slog.Error("operation failed", "error", err)
//	}
//
// Creating a custom logger:
//
//	logger := logging.NewStructuredLogger("watchboard", "v2.0.0", "debug")
//	logger.Info("scheduler starting", "sourceType", "kibana")
//
// Setting explicit log level:
//
//	logging.SetDefaultStructuredLoggerWithLevel("watchboard", "v1.0.0", "warn")
//
// Converting standard library logger:
//
//	stdLogger := logging.NewLogLogger(slog.LevelInfo, false)
//	stdLogger.Println("legacy log message")
//
// # Environment Configuration
//
// The LOG_LEVEL environment variable controls logging verbosity:
//
//	LOG_LEVEL=debug watchboard serve
//	LOG_LEVEL=error watchboard config validate
//
// If LOG_LEVEL is not set, defaults to INFO level.
//
// # Output Format
//
// All logs are written to stderr in JSON format:
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "scheduler started",
//	    "module": "watchboard",
//	    "version": "v1.0.0",
//	    "sourceType": "kibana"
//	}
//
// Debug logs include source location:
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "DEBUG",
//	    "source": {
//	        "function": "capture.(*Capturer).Capture",
//	        "file": "capture.go",
//	        "line": 45
//	    },
//	    "msg": "starting capture",
//	    "module": "watchboard",
//	    "version": "v1.0.0"
//	}
//
// # Integration
//
// This package is used by:
//   - pkg/cli - command bootstrap
//   - pkg/config - reload and change detection logging
//   - pkg/scheduler, pkg/plugin, pkg/capture - capture run logging
//   - pkg/session - automation session lifecycle logging
//
// All components share consistent logging format and configuration.
package logging
