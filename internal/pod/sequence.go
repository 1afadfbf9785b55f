package pod

import (
	"fmt"
	"strings"
)

// NormalizeRole collapses interior whitespace so role names compare cleanly
// regardless of how users typed them. Casing is preserved; matching is
// case-insensitive.
func NormalizeRole(role string) string {
	return strings.Join(strings.Fields(role), " ")
}

func rolesEqual(a, b string) bool {
	return strings.EqualFold(NormalizeRole(a), NormalizeRole(b))
}

// BuildSequence expands a workflow order into the canonical positional member
// sequence: for each stage role, every supplied member with that role is
// appended in the order given. Roles may repeat and several members may share
// one role (fan-out). Members whose role never appears in the order are
// dropped. A stage role with zero matching members rejects the sequence with
// ErrInvalidStageSequence.
func BuildSequence(order []string, members []Member) ([]Member, error) {
	if len(order) == 0 {
		return nil, fmt.Errorf("%w: workflow order is empty", ErrInvalidStageSequence)
	}

	sequence := make([]Member, 0, len(members))
	for _, stage := range order {
		role := NormalizeRole(stage)
		if role == "" {
			return nil, fmt.Errorf("%w: workflow order contains an empty stage", ErrInvalidStageSequence)
		}
		matched := 0
		for _, member := range members {
			if rolesEqual(member.Role, role) {
				// The order's spelling is canonical for the stage.
				member.Role = role
				sequence = append(sequence, member)
				matched++
			}
		}
		if matched == 0 {
			return nil, fmt.Errorf("%w: stage %q has no assigned member", ErrInvalidStageSequence, role)
		}
	}
	return sequence, nil
}

// NormalizeOrder collapses whitespace in every stage name of a workflow order.
func NormalizeOrder(order []string) []string {
	out := make([]string, 0, len(order))
	for _, stage := range order {
		out = append(out, NormalizeRole(stage))
	}
	return out
}
