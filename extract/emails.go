package extract

import (
	"regexp"
	"sort"
	"strings"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// Emails returns the unique email addresses found in text, lowercased and
// sorted. Used as a deterministic quick-add for attendees so attendee capture
// never depends on the model spotting an address.
func Emails(text string) []string {
	found := emailPattern.FindAllString(text, -1)
	seen := make(map[string]bool, len(found))
	var out []string
	for _, e := range found {
		e = strings.ToLower(e)
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	sort.Strings(out)
	return out
}
