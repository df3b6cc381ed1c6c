package broadcast

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/agentslush/core"
)

// Mode selects how a broadcast resolves.
type Mode string

const (
	// ModeRace resolves on the first successful member.
	ModeRace Mode = "race"
	// ModeAll waits for every member.
	ModeAll Mode = "all"
)

// ParseMode validates s. The empty string selects ModeRace.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeRace:
		return ModeRace, nil
	case ModeAll:
		return ModeAll, nil
	default:
		return "", fmt.Errorf("unknown broadcast mode: %q", s)
	}
}

// Group is a named set of agents addressed together.
type Group struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	AgentIDs []string `json:"agentIds"`
	Mode     Mode     `json:"mode"`
}

// Response is one member's outcome.
type Response struct {
	AgentID  string        `json:"agentId"`
	Result   any           `json:"result,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration core.Duration `json:"duration"`

	Err error `json:"-"`
}

// OK reports whether the member succeeded.
func (r Response) OK() bool { return r.Err == nil }

// Result is the outcome of Broadcast.
type Result struct {
	FirstResponse *Response  `json:"firstResponse"`
	Responses     []Response `json:"responses"`
}

// ErrUnknownGroup is returned for unregistered group ids.
var ErrUnknownGroup = errors.New("unknown broadcast group")

// AllFailedError is returned when no member succeeded. Responses holds every
// member's failed response.
type AllFailedError struct {
	GroupID   string
	Responses []Response
}

func (e *AllFailedError) Error() string {
	msgs := make([]string, 0, len(e.Responses))
	for _, r := range e.Responses {
		msgs = append(msgs, fmt.Sprintf("%s: %s", r.AgentID, r.Error))
	}
	return fmt.Sprintf("all agents in group %s failed: %s", e.GroupID, strings.Join(msgs, "; "))
}

// Unwrap returns core.ErrBroadcastAllFailed joined with every member error.
func (e *AllFailedError) Unwrap() []error {
	errs := []error{core.ErrBroadcastAllFailed}
	for _, r := range e.Responses {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}
