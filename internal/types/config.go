package types

type RunMode string

const (
	// ModeLocal runs the API server and the queue workers in one process
	ModeLocal RunMode = "local"
	// ModeDevelopment is ModeLocal with console logging and relaxed validation
	ModeDevelopment RunMode = "development"
	// ModeAPI runs only the HTTP API server
	ModeAPI RunMode = "api"
	// ModeWorker runs only the queue workers
	ModeWorker RunMode = "worker"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
