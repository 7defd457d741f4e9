package domain

import "time"

// FailureReport is handed to the telemetry collaborator whenever a fetch or a
// mutation against the directory fails.
type FailureReport struct {
	Op     string // "load", "change_role", "delete"
	Target string // user id the action was about; empty for load
	Actor  string // user id of the signed-in administrator, when known
	Err    error
	At     time.Time
}

// Kind classifies the report's error for labels and audit documents.
func (r FailureReport) Kind() string {
	switch {
	case r.Err == nil:
		return "none"
	case isNetwork(r.Err):
		return "network"
	case isNotAuthenticated(r.Err):
		return "not_authenticated"
	default:
		return "other"
	}
}
