package models

// HandshakeState is the two-party completion confirmation state.
type HandshakeState string

const (
	HandshakeNone              HandshakeState = "none"
	HandshakeCreatorConfirmed  HandshakeState = "creator_confirmed"
	HandshakeAssigneeConfirmed HandshakeState = "assignee_confirmed"
	HandshakeBoth              HandshakeState = "both"
)

// ConfirmingParty identifies which side of a task is confirming.
type ConfirmingParty string

const (
	PartyCreator  ConfirmingParty = "creator"
	PartyAssignee ConfirmingParty = "assignee"
)

// HandshakeFromFlags maps the persisted booleans onto a state.
func HandshakeFromFlags(creator, assignee bool) HandshakeState {
	switch {
	case creator && assignee:
		return HandshakeBoth
	case creator:
		return HandshakeCreatorConfirmed
	case assignee:
		return HandshakeAssigneeConfirmed
	default:
		return HandshakeNone
	}
}

// Confirm applies a confirmation by party. Transitions are monotonic and
// re-confirming returns the current state unchanged.
func (s HandshakeState) Confirm(party ConfirmingParty) HandshakeState {
	creator, assignee := s.Flags()
	switch party {
	case PartyCreator:
		creator = true
	case PartyAssignee:
		assignee = true
	}
	return HandshakeFromFlags(creator, assignee)
}

// Flags returns the booleans for s.
func (s HandshakeState) Flags() (creator, assignee bool) {
	switch s {
	case HandshakeBoth:
		return true, true
	case HandshakeCreatorConfirmed:
		return true, false
	case HandshakeAssigneeConfirmed:
		return false, true
	default:
		return false, false
	}
}

// Settles reports whether s triggers settlement.
func (s HandshakeState) Settles() bool {
	return s == HandshakeBoth
}
