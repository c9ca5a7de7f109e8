// Package config loads the analyzer configuration.
//
// Values are resolved in three layers, later layers winning:
//
//	1. Default()
//	2. config.yaml (searched in the working directory and configs/)
//	3. Environment variables prefixed MECHPROP_
//
// Examples:
//
//	MECHPROP_SERVER_PORT=9090
//	MECHPROP_ANALYSIS_TRIM_THRESHOLD=2.5
//	MECHPROP_LOGGING_LEVEL=debug
//
// Paths are resolved relative to the executable, never the working
// directory; see GetPaths.
package config
