package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/contact-enricher/internal/contactfile"
	"github.com/sells-group/contact-enricher/internal/model"
)

var batchFlags struct {
	input       string
	output      string
	limit       int
	concurrency int
	mode        string
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Enrich every contact in a CSV or XLSX file",
	Long:  "Reads contacts from a CSV or XLSX file, enriches them concurrently, and writes one JSON line per contact in input order.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		contacts, err := contactfile.Read(batchFlags.input)
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		out := cmd.OutOrStdout()
		if batchFlags.output != "" && batchFlags.output != "-" {
			f, err := os.Create(batchFlags.output)
			if err != nil {
				return eris.Wrap(err, "batch: create output")
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		concurrency := batchFlags.concurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.Concurrency
		}

		_, err = processBatch(ctx, contacts, batchOptions{
			Limit:       batchFlags.limit,
			Concurrency: concurrency,
			Mode:        model.OptimizationMode(batchFlags.mode),
		}, out, env.Pipeline.Enrich)
		return err
	},
}

// enrichFunc is the callback signature for enriching one contact.
type enrichFunc func(ctx context.Context, req model.EnrichmentRequest) (*model.EnrichmentResponse, error)

type batchOptions struct {
	Limit       int
	Concurrency int
	Mode        model.OptimizationMode
}

// batchLine is one JSONL output record.
type batchLine struct {
	Index    int                       `json:"index"`
	Contact  model.ContactInfo         `json:"contact"`
	Response *model.EnrichmentResponse `json:"response,omitempty"`
	Error    string                    `json:"error,omitempty"`
}

type batchSummary struct {
	Succeeded int64
	Failed    int64
}

// processBatch applies limit, enriches contacts with bounded concurrency,
// and writes results to out in input order. A failed contact is recorded
// in its line and does not abort the batch.
func processBatch(ctx context.Context, contacts []model.ContactInfo, opts batchOptions, out io.Writer, enrich enrichFunc) (batchSummary, error) {
	var summary batchSummary
	if len(contacts) == 0 {
		zap.L().Info("no contacts to enrich")
		return summary, nil
	}

	if opts.Limit > 0 && len(contacts) > opts.Limit {
		contacts = contacts[:opts.Limit]
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("contacts", len(contacts)),
		zap.Int("concurrency", opts.Concurrency),
	)

	lines := make([]batchLine, len(contacts))
	var succeeded, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, contact := range contacts {
		g.Go(func() error {
			lines[i] = batchLine{Index: i, Contact: contact}
			log := zap.L().With(zap.Int("index", i), zap.String("name", contact.Name))

			resp, err := enrich(gctx, model.EnrichmentRequest{
				ContactInfo:      contact,
				OptimizationMode: opts.Mode,
			})
			if err != nil {
				failed.Add(1)
				lines[i].Error = err.Error()
				log.Error("enrichment failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			lines[i].Response = resp
			log.Info("enrichment complete",
				zap.Int("fields_enriched", len(resp.EnrichmentSummary.FieldsEnriched)),
				zap.Int("overall_confidence", resp.EnrichmentSummary.OverallConfidence),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, eris.Wrap(err, "batch processing")
	}

	enc := json.NewEncoder(out)
	for _, line := range lines {
		if err := enc.Encode(line); err != nil {
			return summary, eris.Wrap(err, "batch: write output")
		}
	}

	summary = batchSummary{Succeeded: succeeded.Load(), Failed: failed.Load()}
	zap.L().Info("batch complete",
		zap.Int64("succeeded", summary.Succeeded),
		zap.Int64("failed", summary.Failed),
	)
	if summary.Succeeded == 0 {
		return summary, eris.Errorf("batch: all %d contacts failed", summary.Failed)
	}
	return summary, nil
}

func init() {
	batchCmd.Flags().StringVarP(&batchFlags.input, "input", "i", "", "CSV or XLSX file of contacts (required)")
	batchCmd.Flags().StringVarP(&batchFlags.output, "output", "o", "", "JSONL output file (default stdout)")
	batchCmd.Flags().IntVar(&batchFlags.limit, "limit", 0, "max contacts to process (0 = all)")
	batchCmd.Flags().IntVar(&batchFlags.concurrency, "concurrency", 0, "parallel enrichments (default from config)")
	batchCmd.Flags().StringVar(&batchFlags.mode, "mode", "", "optimization mode: speed or balanced")
	_ = batchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(batchCmd)
}
