package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/scheduler"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
)

type generateOptions struct {
	input  string
	format string
	output string
	phases []string
}

func newGenerateCmd(app *cli) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the scheduler on a plan file without touching the database",
		Example: `  timetable generate --input plan.yaml
  timetable generate -i plan.json --format csv --phases first_hour,labs,theory`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.generate(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "plan file (YAML or JSON)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "output format: json or csv")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().StringSliceVar(&opts.phases, "phases", nil, "phase order, overrides SCHEDULER_PHASES")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func (a *cli) generate(ctx context.Context, opts *generateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.format != "json" && opts.format != "csv" {
		return fmt.Errorf("unsupported format %q", opts.format)
	}

	req, err := loadPlan(opts.input)
	if err != nil {
		return err
	}
	if len(opts.phases) > 0 {
		req.Phases = opts.phases
	}

	phases, err := scheduler.ParsePhases(a.cfg.Scheduler.Phases)
	if err != nil {
		return fmt.Errorf("SCHEDULER_PHASES: %w", err)
	}
	// Offline runs only use plan-supplied faculty and never persist.
	svc := service.NewTimetableService(nil, nil, nil, nil, nil, nil, a.logger, service.TimetableConfig{
		Enabled: true,
		Phases:  phases,
	})
	resp, err := svc.Preview(ctx, req, "cli")
	if err != nil {
		return err
	}

	out := a.out
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	if opts.format == "csv" {
		return writeCSV(out, req, resp)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// writeCSV emits one CSV table per batch in request order, each preceded by a
// comment line naming the batch.
func writeCSV(w io.Writer, req dto.GenerateTimetableRequest, resp *dto.GenerateTimetableResponse) error {
	renderer := export.NewCSVExporter()
	for i, batch := range req.Batches {
		data := service.WeeklyGridDataset(resp.Semester, batch, resp.Timetable[batch])
		payload, err := renderer.Render(data)
		if err != nil {
			return err
		}
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "# %s\n", data.Title); err != nil {
			return err
		}
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}
