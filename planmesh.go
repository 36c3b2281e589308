// Package planmesh provides a high-level façade over the dialogue engine and
// its collaborators (language model, venue search, calendar, session store,
// logging) for turning free-form requests like "organize a team dinner next
// Tuesday" into booked calendar events. Most applications interact with this
// package by:
//  1. Creating a PlanMesh via New() with a model and the two tool backends
//  2. Calling HandleTurn once per user utterance
//  3. Rendering the returned reply and inspecting the session snapshot
//
// The façade delegates orchestration to engine.Engine while keeping setup
// ergonomics concise. Defaults (in-memory session store, no-op logger) are
// safe for local development and testing; production deployments supply a
// durable store and a structured logger.
package planmesh

import (
	"context"
	"time"

	"github.com/planmesh/planmesh/core"
	"github.com/planmesh/planmesh/dispatch"
	"github.com/planmesh/planmesh/engine"
	"github.com/planmesh/planmesh/extract"
	"github.com/planmesh/planmesh/logging"
	"github.com/planmesh/planmesh/model"
	"github.com/planmesh/planmesh/planner"
	"github.com/planmesh/planmesh/session"
)

// Options configures the PlanMesh instance.
type Options struct {
	// SessionStore persists sessions (defaults to in-memory).
	SessionStore core.SessionStore
	// Stylist optionally rephrases replies through a model; nil keeps the
	// deterministic templates.
	Stylist model.Model
	// MaxTurns is the per-session turn budget.
	MaxTurns int
	// CallTimeout bounds each collaborator call.
	CallTimeout time.Duration
	// VenueLimit caps venue candidates per search.
	VenueLimit int
	// TopSlots caps proposed free slots.
	TopSlots int
	// Now supplies the reference clock (defaults to time.Now).
	Now func() time.Time
	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// PlanMesh is the high-level façade aggregating the engine and services.
type PlanMesh struct {
	opts   Options
	engine *engine.Engine
}

// New creates a PlanMesh instance wiring the extraction model, venue search
// backend and calendar backend together. Any unset service is initialized
// with a safe default.
func New(m model.Model, venues dispatch.VenueSearcher, cal dispatch.Calendar, optFns ...func(o *Options)) *PlanMesh {
	opts := Options{
		SessionStore: session.NewInMemoryStore(),
		MaxTurns:     20,
		CallTimeout:  15 * time.Second,
		VenueLimit:   5,
		TopSlots:     3,
		Now:          time.Now,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	dispatcher := dispatch.NewDispatcher(venues, cal, func(o *dispatch.Options) {
		o.CallTimeout = opts.CallTimeout
		o.VenueLimit = opts.VenueLimit
		o.Logger = opts.Logger
	})
	p := planner.New(dispatcher, func(o *planner.Options) {
		o.TopSlots = opts.TopSlots
		o.Now = opts.Now
		o.Logger = opts.Logger
	})
	extractor := extract.NewModelExtractor(m, func(o *extract.Options) {
		o.Logger = opts.Logger
	})
	e := engine.New(extractor, p, func(o *engine.Options) {
		o.Store = opts.SessionStore
		o.MaxTurns = opts.MaxTurns
		o.Stylist = opts.Stylist
		o.Now = opts.Now
		o.Logger = opts.Logger
	})

	return &PlanMesh{opts: opts, engine: e}
}

// HandleTurn processes one user utterance for the given session and returns
// the assistant's reply plus the updated session snapshot.
func (m *PlanMesh) HandleTurn(ctx context.Context, sessionID, utterance string) (string, *core.Session, error) {
	return m.engine.HandleTurn(ctx, sessionID, utterance)
}
