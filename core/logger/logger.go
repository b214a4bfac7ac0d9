package logger

// Logger exposes logging methods for common severity levels.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a message with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger implements Logger with no-op methods.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// Call logs the start of the named step with its arguments, runs fn and logs
// whether it succeeded. The error of fn is returned unchanged.
func Call(log Logger, name string, args map[string]any, fn func() error) error {
	if log == nil {
		log = NopLogger{}
	}
	log.Debugw("calling "+name, args)
	if err := fn(); err != nil {
		log.Errorf("%s failed: %v", name, err)
		return err
	}
	log.Debugf("%s succeeded", name)
	return nil
}
