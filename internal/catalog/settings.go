package catalog

import "time"

// Settings carries the per-call knobs spec.md §6 lists on the abstract
// catalog/DDL protocol: sync behaviour and lock acquisition timeout.
type Settings struct {
	// IgnoreSyncSetting mirrors the original's ignoreSyncSetting parameter
	// threaded through dropInnerTableIfAny. It is carried but not read:
	// DropTable and RenameTable behave the same whatever its value.
	IgnoreSyncSetting bool
	// LockTimeout bounds how long a caller waits to acquire a table or
	// DDL guard lock before giving up with ErrLockTimeout.
	LockTimeout time.Duration
}

// DefaultSettings mirrors the teacher's implicit defaults: no timeout
// shortcuts, a generous lock wait.
func DefaultSettings() Settings {
	return Settings{LockTimeout: 45 * time.Second}
}
