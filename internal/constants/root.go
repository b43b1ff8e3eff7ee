package constants

import "time"

const (
	AppName            = "dailycal"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/dailycal/dailycal.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// SecondsPerDay is the width of one ledger key step.
	SecondsPerDay = 86400

	// MaxDaysInMonth bounds the month grid.
	MaxDaysInMonth = 31

	// OriginDaily tags every level started from the daily lobby.
	OriginDaily = "daily"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "dailycal-"
	BackupFileSuffix = ".db"

	// Game host constants
	GameHostLockfileName = "dailycal-host.lock"
	GameHostIdentifier   = "com.julianstephens.dailycal"
	GameHostExecutable   = "dailycal-host"
	StarterSecretHeader  = "X-Dailycal-Secret"
	StarterTimeout       = 5 * time.Second

	// Log rotation
	LogMaxSizeMB  = 10
	LogMaxBackups = 3
	LogMaxAgeDays = 28

	// Countdown constants
	DefaultTickInterval = time.Second
)
