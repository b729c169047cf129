package reconcile

import "strings"

// Action is the set of writes a reconciliation performed.
type Action uint8

const (
	ActionNone          Action = 0
	ActionWriteMetadata Action = 1 << (iota - 1)
	ActionWriteFilesystem
)

// Has reports whether every bit of other is set in a.
func (a Action) Has(other Action) bool {
	return other != ActionNone && a&other == other
}

func (a Action) String() string {
	if a == ActionNone {
		return "none"
	}
	var parts []string
	if a.Has(ActionWriteMetadata) {
		parts = append(parts, "metadata")
	}
	if a.Has(ActionWriteFilesystem) {
		parts = append(parts, "filesystem")
	}
	return strings.Join(parts, "+")
}
