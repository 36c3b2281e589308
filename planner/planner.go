// Package planner implements the dialogue state machine that decides, turn
// by turn, whether to ask a clarifying question, invoke collaborators or
// book. The language model never drives control flow; it only supplies the
// extraction result the planner reacts to.
package planner

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/planmesh/planmesh/core"
	"github.com/planmesh/planmesh/dispatch"
	"github.com/planmesh/planmesh/extract"
	"github.com/planmesh/planmesh/logging"
	"github.com/planmesh/planmesh/schedule"
)

// Options configure the Planner.
type Options struct {
	// TopSlots caps how many free slots are kept for proposals.
	TopSlots int
	// Now supplies the reference clock for date resolution; overridable in
	// tests.
	Now func() time.Time
	// Logger receives transition telemetry.
	Logger logging.Logger
}

// Planner inspects session completeness and sequences collaborator calls.
// It is stateless across sessions; all conversation state lives in the
// session record.
type Planner struct {
	dispatcher *dispatch.Dispatcher
	resolver   *extract.Resolver
	topSlots   int
	now        func() time.Time
	logger     logging.Logger
}

// New creates a Planner over the given dispatcher.
func New(d *dispatch.Dispatcher, optFns ...func(o *Options)) *Planner {
	opts := Options{TopSlots: 3, Now: time.Now, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Planner{
		dispatcher: d,
		resolver:   extract.NewResolver(),
		topSlots:   opts.TopSlots,
		now:        opts.Now,
		logger:     opts.Logger,
	}
}

// Next advances the session one turn. The extraction result has already been
// merged into the planning request by the caller; Next owns phase
// transitions, collaborator sequencing and the next system utterance.
func (p *Planner) Next(ctx context.Context, sess *core.Session, res extract.Result) (string, error) {
	if res.Intent == extract.IntentAbandon {
		return p.abandon(sess)
	}

	switch sess.CurrentPhase() {
	case core.PhaseCollecting, core.PhaseSearching:
		return p.collectOrSearch(ctx, sess)
	case core.PhaseAwaitingConfirmation:
		return p.awaitDecision(ctx, sess, res)
	case core.PhaseBooking:
		// A turn landing here means the previous booking dispatch was cut
		// short; resume it.
		return p.book(ctx, sess)
	default:
		return sessionClosedReply, core.ErrSessionClosed
	}
}

// Abandon forces the terminal abandoned state, used by the engine when the
// turn budget is exhausted.
func (p *Planner) Abandon(sess *core.Session) (string, error) {
	return p.abandon(sess)
}

func (p *Planner) abandon(sess *core.Session) (string, error) {
	from := sess.CurrentPhase()
	if err := sess.Transition(core.PhaseAbandoned); err != nil {
		return sessionClosedReply, err
	}
	p.logTransition(sess, from, core.PhaseAbandoned)
	return abandonedReply, nil
}

// collectOrSearch checks request completeness, asks for the highest-priority
// missing field, or runs the search pipeline.
func (p *Planner) collectOrSearch(ctx context.Context, sess *core.Session) (string, error) {
	req := sess.Snapshot()
	if missing := req.MissingFields(); len(missing) > 0 {
		p.transition(sess, core.PhaseCollecting)
		return missingFieldQuestion(missing[0]), nil
	}

	// Date normalization is deterministic and owned here, never by the model.
	if req.Window == nil {
		window, err := p.resolver.Resolve(req.DateTimeHint, p.now())
		if err != nil {
			p.logger.Warn("planner.hint_unresolved", "hint", req.DateTimeHint, "error", err.Error())
			p.transition(sess, core.PhaseCollecting)
			return unclearDateQuestion, nil
		}
		if err := sess.SetWindow(window); err != nil {
			return sessionClosedReply, err
		}
		req.Window = &window
	}

	p.transition(sess, core.PhaseSearching)
	return p.search(ctx, sess, req)
}

// search issues venue search and the free/busy fan-out concurrently, waits
// for both, intersects, and either proposes or falls back to collecting with
// a targeted widen question.
func (p *Planner) search(ctx context.Context, sess *core.Session, req core.PlanningRequest) (string, error) {
	var (
		venues    []core.VenueCandidate
		venuesErr error
		busy      core.AttendeeBusyMap
		busyErr   error
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		venues, venuesErr = p.dispatcher.SearchVenues(ctx, req.Cuisine, req.Location)
	}()
	// The intersection step only needs the free/busy answers; venue ranking
	// is combined later when forming the proposal.
	busy, busyErr = p.dispatcher.CollectBusy(ctx, req.Attendees, *req.Window)
	<-done

	// Results arriving after an abandon are dropped, not applied.
	if sess.CurrentPhase().Terminal() {
		return sessionClosedReply, core.ErrSessionClosed
	}

	if busyErr != nil {
		return transientFailureReply, busyErr
	}
	if venuesErr != nil {
		if errors.Is(venuesErr, core.ErrNoVenues) {
			p.transition(sess, core.PhaseCollecting)
			return widenVenueQuestion(req), venuesErr
		}
		return transientFailureReply, venuesErr
	}

	slots := schedule.Intersect(busy, *req.Window, req.Duration)
	if len(slots) > p.topSlots {
		slots = slots[:p.topSlots]
	}

	if err := sess.SetVenues(venues); err != nil {
		return sessionClosedReply, err
	}
	if err := sess.SetBusy(busy); err != nil {
		return sessionClosedReply, err
	}
	if err := sess.SetSlots(slots); err != nil {
		return sessionClosedReply, err
	}

	if len(slots) == 0 {
		p.transition(sess, core.PhaseCollecting)
		return widenSlotQuestion, core.ErrNoCommonSlot
	}

	return p.propose(sess)
}

// propose offers the best non-rejected (venue, slot) pair.
func (p *Planner) propose(sess *core.Session) (string, error) {
	clone := sess.Clone()
	for _, venue := range clone.Venues {
		for _, slot := range clone.Slots {
			if sess.PairRejected(venue, slot) {
				continue
			}
			proposal, err := sess.Propose(venue, slot)
			if err != nil {
				return sessionClosedReply, err
			}
			p.transition(sess, core.PhaseAwaitingConfirmation)
			return proposalReply(proposal), nil
		}
	}
	// Every combination was declined earlier in this session.
	p.transition(sess, core.PhaseCollecting)
	return exhaustedReply, core.ErrNoCommonSlot
}

// awaitDecision interprets the turn as confirmation, rejection or
// modification of the standing proposal.
func (p *Planner) awaitDecision(ctx context.Context, sess *core.Session, res extract.Result) (string, error) {
	switch res.Intent {
	case extract.IntentConfirm:
		proposal, err := p.matchProposal(sess, res.Reference)
		if err != nil {
			return disambiguateReply(sess.OpenProposals()), err
		}
		proposal.Status = core.ProposalConfirmed
		// A fresh, explicit confirmation re-arms booking after an earlier
		// transport failure.
		proposal.BookingAttempted = false
		if err := sess.UpdateProposal(proposal); err != nil {
			return sessionClosedReply, err
		}
		p.transition(sess, core.PhaseBooking)
		return p.book(ctx, sess)

	case extract.IntentReject, extract.IntentModify:
		for _, proposal := range sess.OpenProposals() {
			proposal.Status = core.ProposalRejected
			if err := sess.UpdateProposal(proposal); err != nil {
				return sessionClosedReply, err
			}
			sess.RejectPair(proposal)
		}
		if touchesRequiredFields(res.Fields) {
			// The modification changed the search inputs; cached results are
			// stale.
			if err := sess.SetVenues(nil); err != nil {
				return sessionClosedReply, err
			}
			if err := sess.SetSlots(nil); err != nil {
				return sessionClosedReply, err
			}
			return p.collectOrSearch(ctx, sess)
		}
		p.transition(sess, core.PhaseSearching)
		return p.propose(sess)

	default:
		if !res.Fields.Empty() {
			// New field content while a proposal stands is an implicit
			// modification request. The standing proposal no longer matches
			// the changed request, so close it; the pair itself stays
			// eligible for re-ranking since the user never declined it.
			for _, proposal := range sess.OpenProposals() {
				proposal.Status = core.ProposalRejected
				if err := sess.UpdateProposal(proposal); err != nil {
					return sessionClosedReply, err
				}
			}
			if err := sess.SetVenues(nil); err != nil {
				return sessionClosedReply, err
			}
			if err := sess.SetSlots(nil); err != nil {
				return sessionClosedReply, err
			}
			return p.collectOrSearch(ctx, sess)
		}
		return restateProposalReply(sess.OpenProposals()), nil
	}
}

// matchProposal binds a confirmation to exactly one outstanding proposal. A
// bare affirmation is only accepted when a single proposal stands; a
// confirmation carrying a venue reference must identify exactly one open
// proposal, even when only one is open.
func (p *Planner) matchProposal(sess *core.Session, reference string) (core.Proposal, error) {
	open := sess.OpenProposals()
	if len(open) == 0 {
		return core.Proposal{}, core.ErrAmbiguousConfirmation
	}
	if reference == "" {
		if len(open) == 1 {
			return open[0], nil
		}
		return core.Proposal{}, core.ErrAmbiguousConfirmation
	}

	var matched []core.Proposal
	for _, proposal := range open {
		if referenceMatches(proposal, reference) {
			matched = append(matched, proposal)
		}
	}
	if len(matched) == 1 {
		return matched[0], nil
	}
	return core.Proposal{}, core.ErrAmbiguousConfirmation
}

// referenceMatches reports whether a user reference names the proposal's
// venue, in either containment direction ("lucia" or "book Trattoria Lucia
// please").
func referenceMatches(proposal core.Proposal, reference string) bool {
	name := strings.ToLower(proposal.Venue.Name)
	ref := strings.ToLower(reference)
	return strings.Contains(name, ref) || strings.Contains(ref, name)
}

// book dispatches event creation for the confirmed proposal at most once.
func (p *Planner) book(ctx context.Context, sess *core.Session) (string, error) {
	var confirmed *core.Proposal
	for _, proposal := range sess.Clone().Proposals {
		if proposal.Status == core.ProposalConfirmed {
			prop := proposal
			confirmed = &prop
			break
		}
	}
	if confirmed == nil {
		p.transition(sess, core.PhaseAwaitingConfirmation)
		return restateProposalReply(sess.OpenProposals()), core.ErrAmbiguousConfirmation
	}

	if confirmed.BookingAttempted {
		// Turn replay after a crash: never send duplicate invites.
		p.transition(sess, core.PhaseAwaitingConfirmation)
		return bookingFailedReply(confirmed.Venue), nil
	}
	confirmed.BookingAttempted = true
	if err := sess.UpdateProposal(*confirmed); err != nil {
		return sessionClosedReply, err
	}

	attendees := sess.Snapshot().Attendees
	eventID, err := p.dispatcher.CreateEvent(ctx, attendees, confirmed.Venue, confirmed.Slot)
	if sess.CurrentPhase().Terminal() {
		return sessionClosedReply, core.ErrSessionClosed
	}
	if err != nil {
		p.logger.Error("planner.booking_failed", "session", sess.ID, "error", err.Error())
		confirmed.Status = core.ProposalProposed
		if uerr := sess.UpdateProposal(*confirmed); uerr != nil {
			return sessionClosedReply, uerr
		}
		p.transition(sess, core.PhaseAwaitingConfirmation)
		return bookingFailedReply(confirmed.Venue), &core.BookingError{Attempts: 2, Err: err}
	}

	confirmed.Status = core.ProposalBooked
	confirmed.EventID = eventID
	if err := sess.UpdateProposal(*confirmed); err != nil {
		return sessionClosedReply, err
	}
	p.transition(sess, core.PhaseDone)
	return bookedReply(*confirmed), nil
}

// transitionLogger is satisfied by loggers that record structured phase
// transitions, such as *logging.DialogueLogger.
type transitionLogger interface {
	LogTransition(from, to string, turn int)
}

func (p *Planner) transition(sess *core.Session, to core.Phase) {
	from := sess.CurrentPhase()
	if from == to {
		return
	}
	if err := sess.Transition(to); err != nil {
		p.logger.Warn("planner.transition_rejected", "from", from.String(), "to", to.String())
		return
	}
	p.logTransition(sess, from, to)
}

func (p *Planner) logTransition(sess *core.Session, from, to core.Phase) {
	if tl, ok := p.logger.(transitionLogger); ok {
		tl.LogTransition(from.String(), to.String(), sess.Turns)
		return
	}
	p.logger.Info("planner.transition", "from", from.String(), "to", to.String(), "session", sess.ID)
}

// touchesRequiredFields reports whether the extraction changed any input the
// search pipeline depends on.
func touchesRequiredFields(f core.Fields) bool {
	return f.TeamSize != nil || f.Location != nil || f.Cuisine != nil ||
		f.DateTimeHint != nil || len(f.AddAttendees) > 0 || len(f.RemoveAttendees) > 0 ||
		f.ClearTeamSize || f.ClearLocation || f.ClearCuisine || f.ClearDateTime
}
