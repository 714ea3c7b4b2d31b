package shell

// Transport opens the two directions of a console byte stream.
type Transport interface {
	OpenWriter() (Writer, error)
	OpenReader() (Reader, error)
}

// Writer is the outbound direction.
type Writer interface {
	Write(p []byte) (int, error)
	Close() error
}

// Reader is the inbound direction.
type Reader interface {
	// Read blocks until at least one byte is available.
	Read(p []byte) (int, error)
	// TryRead returns immediately; (0, nil) means no data is pending.
	TryRead(p []byte) (int, error)
	Close() error
}

// Logger receives diagnostics. *zap.SugaredLogger satisfies it.
type Logger interface {
	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
}

type nopLogger struct{}

func (nopLogger) Debugw(string, ...any) {}
func (nopLogger) Infow(string, ...any)  {}
func (nopLogger) Warnw(string, ...any)  {}
