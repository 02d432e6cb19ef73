// Package logger provides the structured logging interface used across instagraph.
//
// It wraps zerolog with:
//   - leveled logging (Debug, Info, Warn, Error, Fatal)
//   - structured fields via WithField/WithFields and the *WithFields methods
//   - colored console output on stderr, with optional file output
//   - a global logger for the command line tool
//
// Library callers that only want plain status lines can plug in a
// single-argument sink instead:
//
//	log := logger.NewSinkLogger(func(msg string) {
//	    fmt.Fprintln(os.Stderr, msg)
//	})
//	client, err := instagram.New(ctx, creds, instagram.WithLogger(log))
//
// TestLogger captures entries in memory for assertions in tests.
package logger
