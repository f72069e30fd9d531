// Package config provides configuration loading and defaults for cohortpulse.
package config

// DefaultConfigDir is the default location for cohortpulse configuration.
const DefaultConfigDir = "~/.config/cohortpulse"

// DefaultDBName is the filename for the SQLite dataset store.
const DefaultDBName = "cohortpulse.db"

// DefaultStrict controls whether normalization fails the whole batch on the
// first invalid row. When false, invalid rows are dropped and reported.
const DefaultStrict = false

// DefaultServer holds the default HTTP server settings.
var DefaultServer = Server{
	Addr:            ":8080",
	ReadTimeoutSec:  30,
	WriteTimeoutSec: 60,
	MaxUploadMB:     32,
}

// DefaultLog holds the default logging preferences. An empty Dir disables
// the rotating file sink.
var DefaultLog = Log{
	Dir:     "",
	Verbose: false,
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 100,
}
