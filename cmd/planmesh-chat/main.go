// planmesh-chat is an interactive terminal front end for the dinner planning
// engine. It reads one utterance per line from stdin, feeds it through a
// PlanMesh instance and prints the assistant's reply.
//
// By default venue search runs against the built-in fixtures and calendar
// calls run against an in-process stub that treats every attendee as free and
// prints the event instead of creating it. Wire gcal.NewClient and
// venue.NewPlacesSearcher for real backends.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/planmesh/planmesh"
	"github.com/planmesh/planmesh/core"
	"github.com/planmesh/planmesh/dispatch"
	"github.com/planmesh/planmesh/logging"
	"github.com/planmesh/planmesh/model"
	"github.com/planmesh/planmesh/model/anthropic"
	"github.com/planmesh/planmesh/model/openai"
	"github.com/planmesh/planmesh/venue"
)

var (
	flagProvider string
	flagModel    string
	flagSession  string
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "planmesh-chat",
	Short: "Chat with the team dinner planning assistant",
	Long: `planmesh-chat runs an interactive planning dialogue on the terminal.

Tell it who is coming, what kind of food you want and when, answer its
clarifying questions, and confirm one of the proposed venue/time slots to
book the dinner. Type "exit" to abandon the session.`,
	SilenceUsage: true,
	RunE:         runChat,
}

func init() {
	rootCmd.Flags().StringVar(&flagProvider, "provider", "openai", "extraction model provider (openai or anthropic)")
	rootCmd.Flags().StringVar(&flagModel, "model", "", "model name override (provider default if empty)")
	rootCmd.Flags().StringVar(&flagSession, "session", "", "session id to resume (new session if empty)")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	m, err := newModel()
	if err != nil {
		return err
	}

	level := logging.LogLevelWarn
	if flagVerbose {
		level = logging.LogLevelDebug
	}
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: "text",
		Output: os.Stderr,
	})

	mesh := planmesh.New(m, venue.NewStaticSearcher(venue.DefaultFixtures()), &stubCalendar{out: cmd.OutOrStdout()}, func(o *planmesh.Options) {
		o.Logger = logger
	})

	sessionID := flagSession
	if sessionID == "" {
		sessionID = core.NewID()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "session %s - describe the dinner you want to organize\n", sessionID)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		reply, sess, err := mesh.HandleTurn(ctx, sessionID, line)
		cancel()
		if err != nil && reply == "" {
			return err
		}
		fmt.Fprintln(out, reply)
		if sess != nil && sess.CurrentPhase().Terminal() {
			break
		}
	}
	return scanner.Err()
}

func newModel() (model.Model, error) {
	switch flagProvider {
	case "openai":
		if os.Getenv("OPENAI_API_KEY") == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
		}
		return openai.NewModel(func(o *openai.Options) {
			if flagModel != "" {
				o.Model = flagModel
			}
		}), nil
	case "anthropic":
		if os.Getenv("ANTHROPIC_API_KEY") == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is required")
		}
		return anthropic.NewModel(func(o *anthropic.Options) {
			if flagModel != "" {
				o.Model = sdk.Model(flagModel)
			}
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want openai or anthropic)", flagProvider)
	}
}

// stubCalendar reports every attendee as free and prints events instead of
// creating them.
type stubCalendar struct {
	out io.Writer
}

func (c *stubCalendar) FreeBusy(ctx context.Context, attendee string, window core.Window) ([]core.BusyInterval, error) {
	return nil, nil
}

func (c *stubCalendar) CreateEvent(ctx context.Context, req dispatch.EventRequest) (string, error) {
	fmt.Fprintf(c.out, "[dry-run] event %q at %s, %s>%s, attendees %s\n",
		req.Title, req.Location,
		req.Start.Format(time.RFC3339), req.End.Format(time.RFC3339),
		strings.Join(req.Attendees, ", "))
	return "dry-run-" + core.NewID(), nil
}
