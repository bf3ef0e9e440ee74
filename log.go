package lazyview

// Logger receives diagnostic lines from trackers, loaders and registries.
// *logging.Logger satisfies it. The default logger discards everything.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
