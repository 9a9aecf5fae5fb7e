package log

// MultiLogger fans an event out to every configured Logger, in order.
// Useful for combining console output (SlogAdapter) with a persistent
// trace (FileLogger).
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger returns a Logger that forwards to all of loggers.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log forwards event to every configured logger.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}

var _ Logger = (*MultiLogger)(nil)
