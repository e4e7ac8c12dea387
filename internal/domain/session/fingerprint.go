package session

import "time"

// DeviceFingerprint is a weak, non-owning correlation record keyed by
// DeviceID. It feeds heuristics only and is never used for authorization.
type DeviceFingerprint struct {
	DeviceID  string
	UserID    string
	Screen    string
	Timezone  string
	Language  string
	Platform  string
	FirstSeen time.Time
	LastSeen  time.Time
}
