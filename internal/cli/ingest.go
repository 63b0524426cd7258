package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/observability/metrics"
)

const ingestServiceName = "yatra-ingest"

func newIngestCommand(e *env) *cobra.Command {
	var req domain.IngestRequest
	var metadata map[string]string

	cmd := &cobra.Command{
		Use:   "ingest <path>",
		Short: "Index a file, directory or YAML manifest into the knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req.Path = args[0]
			req.Metadata = make(map[string]any, len(metadata))
			for k, v := range metadata {
				req.Metadata[k] = v
			}

			app, err := e.openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			ingestor, err := app.NewIngestor(ctx)
			if err != nil {
				return err
			}

			m := metrics.NewIngestMetrics(ingestServiceName)
			stopMetrics := serveIngestMetrics(e, m)
			defer stopMetrics()

			start := time.Now()
			m.StartRun()
			report, err := ingestor.Ingest(ctx, req)
			m.FinishRun(ingestServiceName, report, time.Since(start), err)
			if err != nil {
				return err
			}

			renderIngestReport(e.out, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Category, "category", domain.DefaultCategory, "category stored in chunk metadata")
	cmd.Flags().BoolVar(&req.Reset, "reset", false, "drop the collection before indexing")
	cmd.Flags().IntVar(&req.BatchSize, "batch-size", 100, "chunks per embed/index batch")
	cmd.Flags().StringToStringVar(&metadata, "meta", nil, "extra metadata key=value pairs attached to every chunk")
	return cmd
}

// serveIngestMetrics exposes run metrics while ingestion is in progress when
// a metrics port is configured.
func serveIngestMetrics(e *env, m *metrics.IngestMetrics) func() {
	if e.cfg.IngestMetricsPort == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              ":" + e.cfg.IngestMetricsPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.logger.Error("ingest_metrics_server_failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
