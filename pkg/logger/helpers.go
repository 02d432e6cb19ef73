package logger

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Sink receives one human-readable line per log entry
type Sink func(msg string)

// PrintSink writes each line to stdout
func PrintSink(msg string) {
	fmt.Println(msg)
}

// NewSinkLogger adapts a single-argument sink into a Logger.
// Fields are appended to the message as sorted key=value pairs.
// Debug entries never reach the sink.
func NewSinkLogger(sink Sink) Logger {
	if sink == nil {
		sink = PrintSink
	}
	nop := zerolog.Nop()
	return &sinkLogger{sink: sink, zerolog: &nop}
}

type sinkLogger struct {
	sink    Sink
	fields  map[string]interface{}
	zerolog *zerolog.Logger
}

func (s *sinkLogger) Debug(msg string) {}
func (s *sinkLogger) Info(msg string)  { s.write(msg, nil) }
func (s *sinkLogger) Warn(msg string)  { s.write(msg, nil) }
func (s *sinkLogger) Error(msg string) { s.write(msg, nil) }
func (s *sinkLogger) Fatal(msg string) { s.write(msg, nil) }

func (s *sinkLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (s *sinkLogger) InfoWithFields(msg string, fields map[string]interface{})  { s.write(msg, fields) }
func (s *sinkLogger) WarnWithFields(msg string, fields map[string]interface{})  { s.write(msg, fields) }
func (s *sinkLogger) ErrorWithFields(msg string, fields map[string]interface{}) { s.write(msg, fields) }
func (s *sinkLogger) FatalWithFields(msg string, fields map[string]interface{}) { s.write(msg, fields) }

func (s *sinkLogger) WithField(key string, value interface{}) Logger {
	return s.WithFields(map[string]interface{}{key: value})
}

func (s *sinkLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(s.fields)+len(fields))
	for k, v := range s.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &sinkLogger{sink: s.sink, fields: merged, zerolog: s.zerolog}
}

func (s *sinkLogger) WithError(err error) Logger {
	if err == nil {
		return s
	}
	return s.WithField("error", err.Error())
}

func (s *sinkLogger) WithContext(ctx context.Context) Logger { return s }
func (s *sinkLogger) GetZerolog() *zerolog.Logger           { return s.zerolog }

func (s *sinkLogger) write(msg string, fields map[string]interface{}) {
	all := make(map[string]interface{}, len(s.fields)+len(fields))
	for k, v := range s.fields {
		all[k] = v
	}
	for k, v := range fields {
		all[k] = v
	}
	s.sink(formatLine(msg, all))
}

func formatLine(msg string, fields map[string]interface{}) string {
	if len(fields) == 0 {
		return msg
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(msg)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	return b.String()
}

// NewNopLogger creates a no-operation logger
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
