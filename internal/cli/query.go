package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/ports"
)

type queryFlags struct {
	text        string
	language    string
	level       string
	k           int
	hideSources bool
}

func (f queryFlags) query(text string) domain.Query {
	return domain.Query{
		Text:        text,
		Language:    domain.LanguageCode(f.language),
		Proficiency: domain.Proficiency(f.level),
		K:           f.k,
		WantSources: !f.hideSources,
	}
}

func newQueryCommand(e *env) *cobra.Command {
	var flags queryFlags

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Ask a question, or start an interactive session when --query is omitted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := e.openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if strings.TrimSpace(flags.text) != "" {
				renderResponse(e.out, app.Query.ProcessQuery(ctx, flags.query(flags.text)))
				return nil
			}
			return runInteractive(ctx, e.in, e.out, app.Query, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.text, "query", "q", "", "question to ask")
	cmd.Flags().StringVarP(&flags.language, "language", "l", "", "response language code (detected when empty)")
	cmd.Flags().StringVar(&flags.level, "level", string(domain.ProficiencyIntermediate), "proficiency: beginner, intermediate, expert")
	cmd.Flags().IntVarP(&flags.k, "k", "k", 3, "number of chunks to retrieve (1-10)")
	cmd.Flags().BoolVar(&flags.hideSources, "no-sources", false, "do not print retrieved sources")
	return cmd
}

// runInteractive reads one question per line until EOF or an exit command.
func runInteractive(ctx context.Context, in io.Reader, out io.Writer, svc ports.QueryService, flags queryFlags) error {
	headingColor.Fprintln(out, "FinanceYatra interactive mode")
	mutedColor.Fprintln(out, "type a question in any supported language; 'stats' shows pipeline status, 'quit' exits")

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit", "q":
			fmt.Fprintln(out, "bye")
			return nil
		case "stats":
			renderStats(out, svc.Stats(ctx))
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		renderResponse(out, svc.ProcessQuery(ctx, flags.query(line)))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	fmt.Fprintln(out)
	return nil
}
