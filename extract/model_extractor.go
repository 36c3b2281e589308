package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/planmesh/planmesh/core"
	"github.com/planmesh/planmesh/logging"
	"github.com/planmesh/planmesh/model"
)

// wireResult mirrors the JSON object the model is instructed to produce.
// Pointer scalars keep "omitted" distinguishable from zero values.
type wireResult struct {
	TeamSize        *int     `json:"team_size"`
	Location        *string  `json:"location"`
	Cuisine         *string  `json:"cuisine"`
	DateTime        *string  `json:"date_time"`
	DurationMinutes *int     `json:"duration_minutes"`
	AddAttendees    []string `json:"add_attendees"`
	RemoveAttendees []string `json:"remove_attendees"`
	Cleared         []string `json:"cleared"`
	Intent          string   `json:"intent"`
	Reference       string   `json:"reference"`
	Notes           string   `json:"notes"`
}

// Exit phrases short-circuit to IntentAbandon without a model round trip.
var exitPhrases = map[string]bool{
	"exit": true, "quit": true, "cancel": true, "stop": true,
	"never mind": true, "nevermind": true, "forget it": true,
}

// ModelExtractor implements Extractor on top of a language model. Attendee
// emails are additionally captured by a deterministic regex pass so they are
// never lost to model variance.
type ModelExtractor struct {
	model  model.Model
	logger logging.Logger
}

// Options configures the ModelExtractor.
type Options struct {
	Logger logging.Logger
}

// NewModelExtractor constructs a ModelExtractor.
func NewModelExtractor(m model.Model, optFns ...func(o *Options)) *ModelExtractor {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ModelExtractor{model: m, logger: opts.Logger}
}

// Extract implements Extractor.
func (e *ModelExtractor) Extract(ctx context.Context, utterance string, current core.PlanningRequest, now time.Time) (Result, error) {
	trimmed := strings.ToLower(strings.TrimSpace(utterance))
	if exitPhrases[trimmed] {
		return Result{Intent: IntentAbandon}, nil
	}

	emails := Emails(utterance)

	start := time.Now()
	resp, err := e.model.Generate(ctx, model.Request{
		Instructions: extractionInstructions,
		Messages:     []model.Message{{Role: "user", Text: buildPrompt(utterance, current, now)}},
		ForceJSON:    true,
	})
	e.logModelCall(time.Since(start), err)
	if err != nil {
		return Result{}, core.NewCollaboratorError("extract", false, err)
	}

	wire, err := parseWire(resp.Text)
	if err != nil {
		e.logger.Warn("extract.unparseable", "error", err.Error())
		// Unparseable model output with no regex-captured emails means the
		// turn produced no new information.
		if len(emails) == 0 {
			return Result{}, core.ErrExtractionAmbiguous
		}
		return Result{Fields: core.Fields{AddAttendees: emails}}, nil
	}

	res := wire.toResult()
	res.Fields.AddAttendees = unionEmails(res.Fields.AddAttendees, emails)
	if res.Fields.Empty() && res.Intent == IntentNone {
		return Result{}, core.ErrExtractionAmbiguous
	}
	return res, nil
}

// modelCallLogger is satisfied by loggers that record structured model
// telemetry, such as *logging.DialogueLogger.
type modelCallLogger interface {
	LogModelCall(model string, dur time.Duration, success bool, err error)
}

func (e *ModelExtractor) logModelCall(dur time.Duration, err error) {
	if ml, ok := e.logger.(modelCallLogger); ok {
		ml.LogModelCall(e.model.Info().Name, dur, err == nil, err)
		return
	}
	if err != nil {
		e.logger.Error("extract.model_failed", "error", err.Error(), "duration_ms", dur.Milliseconds())
		return
	}
	e.logger.Debug("extract.model_ok", "duration_ms", dur.Milliseconds())
}

func parseWire(text string) (wireResult, error) {
	text = strings.TrimSpace(text)
	// Some providers wrap JSON in a fenced block despite instructions.
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	var w wireResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &w); err != nil {
		return wireResult{}, fmt.Errorf("decode extraction: %w", err)
	}
	return w, nil
}

func (w wireResult) toResult() Result {
	res := Result{Reference: w.Reference, Notes: w.Notes}
	res.Fields = core.Fields{
		TeamSize:        w.TeamSize,
		Location:        w.Location,
		Cuisine:         w.Cuisine,
		DateTimeHint:    w.DateTime,
		AddAttendees:    w.AddAttendees,
		RemoveAttendees: w.RemoveAttendees,
	}
	if w.DurationMinutes != nil && *w.DurationMinutes > 0 {
		d := time.Duration(*w.DurationMinutes) * time.Minute
		res.Fields.Duration = &d
	}
	for _, c := range w.Cleared {
		switch c {
		case "team_size":
			res.Fields.ClearTeamSize = true
		case "location":
			res.Fields.ClearLocation = true
		case "cuisine":
			res.Fields.ClearCuisine = true
		case "date_time":
			res.Fields.ClearDateTime = true
		}
	}
	switch strings.ToLower(w.Intent) {
	case "confirm":
		res.Intent = IntentConfirm
	case "reject":
		res.Intent = IntentReject
	case "modify":
		res.Intent = IntentModify
	case "abandon":
		res.Intent = IntentAbandon
	default:
		res.Intent = IntentNone
	}
	return res
}

func unionEmails(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, e := range list {
			e = strings.ToLower(strings.TrimSpace(e))
			if e == "" || seen[e] {
				continue
			}
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}
