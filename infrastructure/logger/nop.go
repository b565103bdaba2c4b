package logger

// NoOpLogger discards everything. Tests use it where output is noise.
type NoOpLogger struct{}

// NewNop returns a logger that drops all entries.
func NewNop() Logger {
	return &NoOpLogger{}
}

// Debug does nothing.
func (l *NoOpLogger) Debug(string, ...Field) {}

// Info does nothing.
func (l *NoOpLogger) Info(string, ...Field) {}

// Warn does nothing.
func (l *NoOpLogger) Warn(string, ...Field) {}

// Error does nothing.
func (l *NoOpLogger) Error(string, ...Field) {}

// Fatal does nothing; it does not exit.
func (l *NoOpLogger) Fatal(string, ...Field) {}

// With returns the same no-op logger.
func (l *NoOpLogger) With(...Field) Logger {
	return l
}

// Sync always succeeds.
func (l *NoOpLogger) Sync() error {
	return nil
}
