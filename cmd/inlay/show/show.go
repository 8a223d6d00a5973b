// Package showcmder provides the show command for inspecting stored
// attribution from the terminal.
package showcmder

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/inlay/pkg/attribution"
	"github.com/papercomputeco/inlay/pkg/attribution/remote"
	"github.com/papercomputeco/inlay/pkg/authorship"
	"github.com/papercomputeco/inlay/pkg/cliui"
	"github.com/papercomputeco/inlay/pkg/config"
	"github.com/papercomputeco/inlay/pkg/utils"
)

type showCommander struct {
	apiTarget string
	raw       bool
}

var showFlags = config.FlagSet{
	config.FlagAPITarget: {
		Name:        "api-target",
		Shorthand:   "t",
		ViperKey:    "client.api_target",
		Description: "Base URL of the attribution API server",
	},
}

const showLongDesc string = `Show the stored attribution for a document.

Queries the attribution API and renders each tracked line with its author,
model, and prompt excerpt. Lines without a record are human-authored and
are not listed.

Examples:
  inlay show file:///work/main.go
  inlay show --raw file:///work/main.go`

const showShortDesc string = "Show stored attribution for a document"

func NewShowCmd() *cobra.Command {
	cmder := &showCommander{}

	cmd := &cobra.Command{
		Use:   "show <document>",
		Short: showShortDesc,
		Long:  showLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, showFlags, []string{config.FlagAPITarget})
			cmder.apiTarget = v.GetString("client.api_target")

			return cmder.run(cmd.Context(), authorship.DocumentID(args[0]))
		},
	}

	config.AddStringFlag(cmd, showFlags, config.FlagAPITarget, &cmder.apiTarget)
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print plain markdown without terminal rendering")

	return cmd
}

func (c *showCommander) run(ctx context.Context, doc authorship.DocumentID) error {
	if ctx == nil {
		ctx = context.Background()
	}

	client := remote.NewClient(c.apiTarget)
	defer client.Close()

	result, err := client.Fetch(ctx, doc, attribution.PriorityHigh)
	if err != nil {
		return fmt.Errorf("fetching attribution: %w", err)
	}

	markdown := buildMarkdown(doc, result)

	if c.raw {
		fmt.Print(markdown)
		return nil
	}

	rendered, err := cliui.RenderMarkdown(markdown)
	if err != nil {
		// Fall back to plain markdown on render failure.
		fmt.Print(markdown)
		return nil
	}

	fmt.Print(rendered)
	return nil
}

// buildMarkdown formats an attribution result as a markdown document,
// one section per tracked line in ascending line order.
func buildMarkdown(doc authorship.DocumentID, result authorship.AttributionResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", doc)

	if len(result) == 0 {
		b.WriteString("No tracked changes. Every line is human-authored.\n")
		return b.String()
	}

	lines := make([]int, 0, len(result))
	for line := range result {
		lines = append(lines, line)
	}
	sort.Ints(lines)

	fmt.Fprintf(&b, "%d tracked line(s).\n\n", len(lines))

	for _, line := range lines {
		info := result[line]

		fmt.Fprintf(&b, "## Line %d: %s\n\n", line, utils.Capitalize(info.Author))

		if p := info.Prompt; p != nil {
			if p.AgentModel != nil {
				fmt.Fprintf(&b, "- Model: `%s`\n", *p.AgentModel)
			}
			if p.PairedHumanAuthor != nil {
				fmt.Fprintf(&b, "- Paired with: %s\n", *p.PairedHumanAuthor)
			}
			if msg, ok := p.FirstUserMessage(); ok {
				fmt.Fprintf(&b, "\n```\n%s\n```\n", utils.Truncate(msg, 400))
			}
		}

		b.WriteString("\n")
	}

	return b.String()
}
