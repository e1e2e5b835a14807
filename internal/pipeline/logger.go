package pipeline

// Logger defines the logging interface for pipeline tasks.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Recorder receives pipeline event counts, typically a *metrics.Registry.
type Recorder interface {
	RecordReading(sensor, path string)
	RecordSensorError(sensor string)
	RecordSinkError(sink string)
	RecordControl(direction string)
	RecordButtonPress()
	RecordHeartbeat()
}

type noopRecorder struct{}

func (noopRecorder) RecordReading(string, string) {}
func (noopRecorder) RecordSensorError(string)     {}
func (noopRecorder) RecordSinkError(string)       {}
func (noopRecorder) RecordControl(string)         {}
func (noopRecorder) RecordButtonPress()           {}
func (noopRecorder) RecordHeartbeat()             {}
