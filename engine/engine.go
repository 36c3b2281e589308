// Package engine exposes the synchronous conversational surface: one
// HandleTurn call per user utterance. It owns per-session serialization, the
// turn budget, extraction sequencing and persistence; dialogue decisions are
// delegated to the planner.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/planmesh/planmesh/core"
	"github.com/planmesh/planmesh/extract"
	"github.com/planmesh/planmesh/logging"
	"github.com/planmesh/planmesh/model"
	"github.com/planmesh/planmesh/planner"
	"github.com/planmesh/planmesh/session"
)

const closedSessionReply = "This conversation has already ended. Start a new session to plan another dinner."

// Options configure the engine.
type Options struct {
	// Store persists sessions across turns.
	Store core.SessionStore
	// MaxTurns is the per-session turn budget; exceeding it abandons the
	// session rather than looping forever.
	MaxTurns int
	// ExtractTimeout bounds the extraction model call.
	ExtractTimeout time.Duration
	// Stylist optionally rephrases deterministic replies through a model's
	// free-text generation. Content never depends on it; failures fall back
	// to the template.
	Stylist model.Model
	// Now supplies the reference clock, overridable in tests.
	Now func() time.Time
	// Logger receives structured telemetry.
	Logger logging.Logger
}

// Engine drives one conversation turn to completion at a time. Independent
// sessions are fully isolated and may run in parallel; turns within one
// session are serialized on a per-session lock.
type Engine struct {
	store     core.SessionStore
	extractor extract.Extractor
	planner   *planner.Planner

	maxTurns       int
	extractTimeout time.Duration
	stylist        model.Model
	now            func() time.Time
	logger         logging.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an Engine around an extractor and planner.
func New(extractor extract.Extractor, p *planner.Planner, optFns ...func(o *Options)) *Engine {
	opts := Options{
		MaxTurns:       20,
		ExtractTimeout: 30 * time.Second,
		Now:            time.Now,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Store == nil {
		opts.Store = session.NewInMemoryStore()
	}
	return &Engine{
		store:          opts.Store,
		extractor:      extractor,
		planner:        p,
		maxTurns:       opts.MaxTurns,
		extractTimeout: opts.ExtractTimeout,
		stylist:        opts.Stylist,
		now:            opts.Now,
		logger:         opts.Logger,
	}
}

// HandleTurn processes one user utterance synchronously and returns the next
// system utterance plus the updated session snapshot. Conversation-level
// failures (ambiguous input, empty search results, collaborator hiccups)
// resolve into the reply; only infrastructure failures surface as errors.
func (e *Engine) HandleTurn(ctx context.Context, sessionID, utterance string) (string, *core.Session, error) {
	lock := e.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := e.store.Get(sessionID)
	if err != nil {
		return "", nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if sess.CurrentPhase().Terminal() {
		return closedSessionReply, sess, nil
	}

	sess.AddTurn("user", utterance)

	if sess.Turns > e.maxTurns {
		e.logger.Warn("engine.turn_budget_exceeded", "session", sessionID, "turns", sess.Turns)
		reply, _ := e.planner.Abandon(sess)
		return e.finishTurn(sess, reply)
	}

	res, extractErr := e.extract(ctx, sess, utterance)
	if extractErr != nil {
		switch {
		case errors.Is(extractErr, core.ErrExtractionAmbiguous):
			// No new information: let the planner re-ask for what it needs.
			res = extract.Result{}
		default:
			// Model outage. State is preserved; the user can simply retry.
			e.logger.Error("engine.extract_failed", "session", sessionID, "error", extractErr.Error())
			reply := "I had trouble understanding that due to a temporary problem on my side. Could you say it again?"
			return e.finishTurn(sess, reply)
		}
	} else if err := sess.ApplyFields(res.Fields); err != nil {
		return closedSessionReply, sess, nil
	}

	reply, plannerErr := e.planner.Next(ctx, sess, res)
	if plannerErr != nil {
		if errors.Is(plannerErr, core.ErrSessionClosed) && reply == "" {
			reply = closedSessionReply
		}
		// The reply already tells the user how to proceed and no session
		// state was dropped, so the turn still completes.
		e.logger.Info("engine.turn_recoverable", "session", sessionID, "error", plannerErr.Error())
	}

	return e.finishTurn(sess, e.style(ctx, reply))
}

func (e *Engine) extract(ctx context.Context, sess *core.Session, utterance string) (extract.Result, error) {
	extractCtx, cancel := context.WithTimeout(ctx, e.extractTimeout)
	defer cancel()
	return e.extractor.Extract(extractCtx, utterance, sess.Snapshot(), e.now())
}

// style optionally passes the deterministic reply through the model for
// phrasing only. The template wins whenever the model fails or returns
// nothing.
func (e *Engine) style(ctx context.Context, reply string) string {
	if e.stylist == nil || reply == "" {
		return reply
	}
	resp, err := e.stylist.Generate(ctx, model.Request{
		Instructions: "Rephrase the assistant message naturally without changing any facts, names, times or questions. Reply with the rephrased message only.",
		Messages:     []model.Message{{Role: "user", Text: reply}},
	})
	if err != nil || resp.Text == "" {
		e.logger.Debug("engine.style_fallback", "error", fmt.Sprint(err))
		return reply
	}
	return resp.Text
}

func (e *Engine) finishTurn(sess *core.Session, reply string) (string, *core.Session, error) {
	sess.AddTurn("assistant", reply)
	if err := e.store.Save(sess); err != nil {
		return "", nil, fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return reply, sess, nil
}

func (e *Engine) sessionLock(sessionID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.locks == nil {
		e.locks = map[string]*sync.Mutex{}
	}
	lock, ok := e.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[sessionID] = lock
	}
	return lock
}
