package core

import (
	"slices"
	"sort"
)

// LoggedUser is the identity established by an authentication rule.
// Equality is by ID only; groups are attached by authorization rules later.
type LoggedUser struct {
	ID              string
	AvailableGroups []string
	CurrentGroup    string
}

func NewLoggedUser(id string) *LoggedUser {
	return &LoggedUser{ID: id}
}

func (u *LoggedUser) AddAvailableGroups(groups []string) {
	for _, g := range groups {
		if !slices.Contains(u.AvailableGroups, g) {
			u.AvailableGroups = append(u.AvailableGroups, g)
		}
	}
	sort.Strings(u.AvailableGroups)
}

// ResolveCurrentGroup picks the group the request operates under: the
// preferred one when it is available, otherwise the first available group.
func (u *LoggedUser) ResolveCurrentGroup(preferred string) {
	if preferred != "" && slices.Contains(u.AvailableGroups, preferred) {
		u.CurrentGroup = preferred
		return
	}
	if len(u.AvailableGroups) > 0 {
		u.CurrentGroup = u.AvailableGroups[0]
	}
}

func (u *LoggedUser) Clone() *LoggedUser {
	if u == nil {
		return nil
	}
	clone := &LoggedUser{
		ID:           u.ID,
		CurrentGroup: u.CurrentGroup,
	}
	clone.AvailableGroups = append(clone.AvailableGroups, u.AvailableGroups...)
	return clone
}

// RuleExit records one rule evaluation inside a block check.
type RuleExit struct {
	Rule  string
	Match bool
}

// BlockHistory is the audit trail of one block check: every rule that ran,
// in the order it ran, up to the short-circuit point.
type BlockHistory struct {
	Block   string
	Entries []RuleExit
}

// LdapUser is an entry resolved from the directory.
type LdapUser struct {
	UID string
	DN  string
}
