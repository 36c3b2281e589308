package planner

import (
	"fmt"
	"strings"

	"github.com/planmesh/planmesh/core"
)

// Deterministic reply templates. The engine may pass them through the
// language model for phrasing, but the content decisions are made here.
const (
	abandonedReply        = "Alright, I've dropped the plan. Just start a new conversation whenever you want to pick it up again."
	sessionClosedReply    = "This conversation has already ended. Start a new session to plan another dinner."
	unclearDateQuestion   = "I couldn't pin down that date. Could you give it to me more concretely, like \"next Tuesday at 7pm\" or \"2025-03-14\"?"
	widenSlotQuestion     = "No time in that window works for everyone. Should we try a different day or a wider time range?"
	transientFailureReply = "I hit a temporary problem reaching one of my services. Nothing is lost, please try that again."
	exhaustedReply        = "We've been through every venue and time combination I found. Want to change the area, cuisine or date so I can search again?"
)

const slotTimeLayout = "Monday, Jan 2 at 3:04 PM"

func missingFieldQuestion(field string) string {
	switch field {
	case core.FieldAttendees:
		return "Who should I invite? Please share their email addresses."
	case core.FieldPlace:
		return "What kind of food are you thinking of, or which area should I search in?"
	case core.FieldDateTime:
		return "When would you like to have the dinner?"
	case core.FieldTeamSize:
		return "How many people should I plan for?"
	default:
		return "Could you tell me a bit more about the dinner you have in mind?"
	}
}

func widenVenueQuestion(req core.PlanningRequest) string {
	criteria := req.Cuisine
	if criteria == "" {
		criteria = req.Location
	} else if req.Location != "" {
		criteria = fmt.Sprintf("%s in %s", req.Cuisine, req.Location)
	}
	return fmt.Sprintf("I couldn't find any restaurants matching %q. Want to widen the area or try a different cuisine?", criteria)
}

func proposalReply(p core.Proposal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "How about %s", p.Venue.Name)
	if p.Venue.Address != "" {
		fmt.Fprintf(&b, " (%s", p.Venue.Address)
		if p.Venue.Rating > 0 {
			fmt.Fprintf(&b, ", rated %.1f", p.Venue.Rating)
		}
		b.WriteString(")")
	}
	fmt.Fprintf(&b, " on %s - %s?", p.Slot.Start.Format(slotTimeLayout), p.Slot.End.Format("3:04 PM"))
	b.WriteString(" Say the word and I'll book it and send the invites.")
	return b.String()
}

func restateProposalReply(open []core.Proposal) string {
	if len(open) == 0 {
		return "There's no proposal on the table right now. Tell me what to change and I'll search again."
	}
	p := open[0]
	return fmt.Sprintf("Still on the table: %s on %s. Shall I book it, or would you like something different?",
		p.Venue.Name, p.Slot.Start.Format(slotTimeLayout))
}

func disambiguateReply(open []core.Proposal) string {
	if len(open) == 0 {
		return "I don't have an open proposal to book. Tell me what to search for and we'll get one."
	}
	names := make([]string, len(open))
	for i, p := range open {
		names[i] = fmt.Sprintf("%s on %s", p.Venue.Name, p.Slot.Start.Format(slotTimeLayout))
	}
	return fmt.Sprintf("Just to be sure: which one should I book: %s?", strings.Join(names, ", or "))
}

func bookingFailedReply(venue core.VenueCandidate) string {
	return fmt.Sprintf("I couldn't get the invitation out for %s; the calendar service isn't cooperating. The proposal still stands; say \"book it\" to retry or pick an alternative.", venue.Name)
}

func bookedReply(p core.Proposal) string {
	return fmt.Sprintf("Done! I've booked %s for %s - %s and sent invitations to everyone. Enjoy the dinner!",
		p.Venue.Name, p.Slot.Start.Format(slotTimeLayout), p.Slot.End.Format("3:04 PM"))
}
