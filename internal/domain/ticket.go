package domain

import (
	"errors"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "open"
	TicketStatusResolved TicketStatus = "resolved"
	TicketStatusArchived TicketStatus = "archived"
)

// Valid reports whether s is a known lifecycle value.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusResolved, TicketStatusArchived:
		return true
	}
	return false
}

// TicketCategory enumerates what a ticket is about.
type TicketCategory string

const (
	TicketCategoryBug          TicketCategory = "bug"
	TicketCategorySuggestion   TicketCategory = "suggestion"
	TicketCategoryPlayerReport TicketCategory = "player_report"
	TicketCategoryTechnical    TicketCategory = "technical"
)

// TicketCategories lists every accepted category in display order.
var TicketCategories = []TicketCategory{
	TicketCategoryBug,
	TicketCategorySuggestion,
	TicketCategoryPlayerReport,
	TicketCategoryTechnical,
}

// Valid reports whether c is one of the fixed categories.
func (c TicketCategory) Valid() bool {
	for _, known := range TicketCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Ticket is a support request submitted through the public intake form.
type Ticket struct {
	ID             int64
	Category       TicketCategory
	DiscordTag     string
	Description    string
	AttachmentURLs []string
	Status         TicketStatus
	CreatedAt      time.Time
}

// TicketAction is an operator command in the triage console.
type TicketAction string

const (
	TicketActionResolve   TicketAction = "resolve"
	TicketActionArchive   TicketAction = "archive"
	TicketActionUnarchive TicketAction = "unarchive"
	TicketActionReopen    TicketAction = "reopen"
	TicketActionDelete    TicketAction = "delete"
)

var (
	// ErrInvalidTransition is returned when an action is not allowed from the current status.
	ErrInvalidTransition = errors.New("invalid ticket status transition")
	// ErrUnknownAction is returned for actions outside the lifecycle table.
	ErrUnknownAction = errors.New("unknown ticket action")
)

type transition struct {
	from    []TicketStatus
	to      TicketStatus
	confirm bool
}

var ticketTransitions = map[TicketAction]transition{
	TicketActionResolve:   {from: []TicketStatus{TicketStatusOpen}, to: TicketStatusResolved},
	TicketActionArchive:   {from: []TicketStatus{TicketStatusOpen, TicketStatusResolved}, to: TicketStatusArchived, confirm: true},
	TicketActionUnarchive: {from: []TicketStatus{TicketStatusArchived}, to: TicketStatusOpen},
	TicketActionReopen:    {from: []TicketStatus{TicketStatusResolved}, to: TicketStatusOpen},
	TicketActionDelete:    {from: []TicketStatus{TicketStatusOpen, TicketStatusResolved, TicketStatusArchived}, confirm: true},
}

// RequiresConfirmation reports whether the action is destructive.
func (a TicketAction) RequiresConfirmation() bool {
	return ticketTransitions[a].confirm
}

// NextStatus returns the status a ticket moves to when action is applied.
// Delete has no target status and returns an empty value.
func NextStatus(current TicketStatus, action TicketAction) (TicketStatus, error) {
	t, ok := ticketTransitions[action]
	if !ok {
		return "", ErrUnknownAction
	}
	for _, from := range t.from {
		if from == current {
			return t.to, nil
		}
	}
	return "", ErrInvalidTransition
}

// ActionFor resolves the action that moves a ticket from current to next.
func ActionFor(current, next TicketStatus) (TicketAction, error) {
	for _, action := range []TicketAction{TicketActionResolve, TicketActionArchive, TicketActionUnarchive, TicketActionReopen} {
		to, err := NextStatus(current, action)
		if err == nil && to == next {
			return action, nil
		}
	}
	return "", ErrInvalidTransition
}

// AvailableActions lists the actions an operator may take on a ticket in the given status.
func AvailableActions(current TicketStatus) []TicketAction {
	var actions []TicketAction
	for _, action := range []TicketAction{TicketActionResolve, TicketActionReopen, TicketActionArchive, TicketActionUnarchive, TicketActionDelete} {
		if _, err := NextStatus(current, action); err == nil {
			actions = append(actions, action)
		}
	}
	return actions
}
