package constants

// Keys of the single-value rows in the settings table.
const (
	SettingRegistrationDate = "registration_date"
	SettingLastPlayed       = "last_played"
	SettingPlayedDays       = "played_days"
)
