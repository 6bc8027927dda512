package models

// String methods for all custom string types.
// These are required for toon serialization, which uses fmt.Stringer.

// Role
func (r Role) String() string { return string(r) }

// Status
func (s Status) String() string { return string(s) }

// Mode
func (m Mode) String() string { return string(m) }

// WarningKind
func (w WarningKind) String() string { return string(w) }
