package config

import "time"

// Application constants
const (
	AppName = "mechprop"

	// EnvPrefix namespaces every environment variable, e.g. MECHPROP_SERVER_PORT.
	EnvPrefix = "MECHPROP"

	// PropertyFileName is the append-only result table written next to
	// each analysed log.
	PropertyFileName = "mechanical property.csv"

	DefaultDataDir    = "data"
	DefaultLogsDir    = "logs"
	DefaultWebDir     = "web"
	DefaultExportsDir = "data/exports"

	DefaultPort            = 8080
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 60 * time.Second

	// MaxLogFileSize bounds the instrument logs accepted for analysis.
	MaxLogFileSize = 256 << 20
)
