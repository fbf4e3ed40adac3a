// internal/actions/validate.go
package actions

import (
	"regexp"
	"time"

	"github.com/user/magnus/internal/types"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Valid reports whether a drafted action carries everything needed to
// execute it. Model output is untrusted; anything incomplete is dropped
// before the action reaches the user.
func Valid(a types.Action) bool {
	switch a.Type {
	case types.ActionSendEmail:
		return emailPattern.MatchString(a.Parameters.To) && a.Parameters.Subject != ""
	case types.ActionScheduleMeeting:
		return a.Parameters.Summary != "" && validTimeRange(a.Parameters.StartTime, a.Parameters.EndTime)
	case types.ActionFetchReport:
		return a.Parameters.URL != ""
	default:
		return false
	}
}

// validTimeRange requires RFC 3339 timestamps with the end after the start.
func validTimeRange(start, end string) bool {
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return false
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return false
	}
	return e.After(s)
}

// Filter returns only the actions that pass validation, preserving order.
func Filter(in []types.Action) []types.Action {
	var out []types.Action
	for _, a := range in {
		if Valid(a) {
			out = append(out, a)
		}
	}
	return out
}
