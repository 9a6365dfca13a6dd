package config

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Observability defaults.
const (
	DefaultOTLPInsecure       = false
	DefaultSampleRatio        = 1.0
	DefaultShutdownTimeoutSec = 5
)

// Grammar defaults.
const (
	DefaultGrammarBuiltin = true
)
