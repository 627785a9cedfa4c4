// Package log provides slog loggers that mask secrets before they are
// written.
//
// pluginreviews handles a few credentials: the Redis password, the SOCKS5
// proxy username and password, and URLs that embed them (for example
// redis://:secret@host:6379). The SecureHandler wraps any slog.Handler and
// masks:
//   - attributes whose key names a credential (password, token, auth, ...)
//   - string values that look like bearer, basic or JWT credentials
//   - the userinfo of URLs appearing in string values and errors
//
// Even in verbose mode, sensitive values are masked so that logs can be
// shared when reporting problems.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Info("connecting", "addr", "redis://:hunter2@localhost:6379")
//	// addr=redis://***REDACTED***@localhost:6379
package log
