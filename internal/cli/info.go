package cli

import "github.com/spf13/cobra"

func newStatsCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show vector store, model and translation status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			renderStats(e.out, app.Query.Stats(cmd.Context()))
			return nil
		},
	}
}

func newLanguagesCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported languages",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			renderLanguages(e.out, e.cfg.Pipeline().SupportedLanguages)
			return nil
		},
	}
}
