package extract

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/planmesh/planmesh/core"
)

const extractionInstructions = `You are the slot-extraction component of a team-dinner planning assistant.
Read ONE user utterance and report ONLY what it explicitly supplies or negates.

Rules:
- Omit every field the utterance does not mention. Omission means "unchanged".
- List a field under "cleared" ONLY when the user explicitly withdraws a value they gave earlier ("actually forget the cuisine").
- Never invent venues, free times, emails or dates. Do not do date arithmetic; report the user's date phrasing verbatim in "date_time".
- "intent" is one of: none, confirm, reject, modify, abandon. Use confirm/reject/modify only when the user is reacting to a proposal shown in the conversation.
- "reference" is the venue name or time the user points at when confirming or modifying, otherwise empty.

Respond with a single JSON object:
{
  "team_size": int or omit,
  "location": string or omit,
  "cuisine": string or omit,
  "date_time": string or omit,
  "duration_minutes": int or omit,
  "add_attendees": [emails] or omit,
  "remove_attendees": [emails] or omit,
  "cleared": ["team_size"|"location"|"cuisine"|"date_time"] or omit,
  "intent": "none",
  "reference": "",
  "notes": "one short confidence remark"
}`

// buildPrompt assembles the extraction request: reference clock, the current
// planning record for context-aware reading ("them too" resolves against
// known attendees) and the utterance itself.
func buildPrompt(utterance string, current core.PlanningRequest, now time.Time) string {
	state, _ := json.Marshal(current)
	return fmt.Sprintf("Current date and time: %s\nCurrent planning record: %s\nUser utterance: %q",
		now.Format("Monday, 2006-01-02 15:04 MST"), state, utterance)
}
