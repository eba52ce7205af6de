package engine

import (
	"strings"

	"github.com/classlens/classlens/internal/rules"
)

// interpretFeature maps one call-site event to a feature flag via the
// interpretation table. Events whose receiver type name does not contain
// the designated fragment are never interpreted, even when the member
// name matches; unmatched member names produce no update.
func interpretFeature(ev Event, table rules.Interpreter) (rules.Feature, bool) {
	if !strings.Contains(ev.Receiver, table.ReceiverFragment) {
		return "", false
	}
	f, ok := table.Members[ev.Member]
	return f, ok
}

// receiverMatchesAny reports whether the receiver contains one of the
// given fragments.
func receiverMatchesAny(receiver string, fragments []string) bool {
	for _, frag := range fragments {
		if strings.Contains(receiver, frag) {
			return true
		}
	}
	return false
}

// memberIn reports whether member appears in the list.
func memberIn(member string, members []string) bool {
	for _, m := range members {
		if m == member {
			return true
		}
	}
	return false
}
