package app

const (
	Name           = "kaga"
	ConfigFilename = "config.json"
	DBFilename     = "profiles.db"
	LogFilename    = "kaga.log"
)

// Version is filled by ldflags in release builds.
var Version = "dev"
