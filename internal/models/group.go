package models

// Group is a set of participants sharing bills.
//
// The creator is always a member and can never be removed. Registered
// members and guests are kept in separate lists because only registered
// members can log in, pay bills or settle debts.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// CreatedBy is the user ID of the group owner.
	CreatedBy string

	// Members are the registered participants of the group.
	Members []Participant

	// Guests are group-scoped participants without an account.
	Guests []Participant

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Roster returns every participant of the group, registered members first.
func (g *Group) Roster() []Participant {
	roster := make([]Participant, 0, len(g.Members)+len(g.Guests))
	roster = append(roster, g.Members...)
	roster = append(roster, g.Guests...)
	return roster
}

// HasMember reports whether id is a registered member of the group.
func (g *Group) HasMember(id string) bool {
	for _, m := range g.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// HasGuest reports whether id is a guest of the group.
func (g *Group) HasGuest(id string) bool {
	for _, m := range g.Guests {
		if m.ID == id {
			return true
		}
	}
	return false
}

// MemberIDs returns the IDs of the registered members.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}
