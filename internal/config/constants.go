package config

const (
	// DefaultSessionTTLSeconds is how long a minted check-in token stays
	// valid: the 180s display rotation plus a 5s buffer so the token on
	// screen never expires before its replacement arrives.
	DefaultSessionTTLSeconds = 185

	// DefaultRotateIntervalSeconds is the presenter's re-issue cadence.
	DefaultRotateIntervalSeconds = 180
)
