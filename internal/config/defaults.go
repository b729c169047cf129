package config

const (
	defaultLogDir        = "~/.local/state/datefixer/logs"
	defaultJournalPath   = "~/.local/share/datefixer/journal.db"
	defaultLockPath      = "~/.local/state/datefixer/datefixer.lock"
	defaultBinary        = "exiftool"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultRetentionDays = 30
	// DisabledDays turns a future-date threshold off.
	DisabledDays = -1
)

// Default returns a Config populated with repository defaults. Paths are not
// yet expanded; Load does that.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:      defaultLogDir,
			JournalPath: defaultJournalPath,
			LockPath:    defaultLockPath,
		},
		Exiftool: Exiftool{
			Binary: defaultBinary,
		},
		Fix: Fix{
			FutureModifiedDays: DisabledDays,
			FutureExifDays:     DisabledDays,
		},
		Journal: Journal{Enabled: true},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultRetentionDays,
		},
	}
}
