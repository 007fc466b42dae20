package models

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
)

// No-match sentinels a model may answer with when no category fits.
var NoMatchSentinels = []string{"NINGUNA", "NONE", "N/A", "NO", "NO_MATCH"}
