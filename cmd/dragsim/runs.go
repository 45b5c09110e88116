package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/dragsim/internal/plot"
	"github.com/san-kum/dragsim/internal/viz"
)

var svgWidth, svgHeight int

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tV0\tTARGET\tSIM TIME\tDT\tSETTLING\tCTRL")
	for _, run := range runs {
		settling := "-"
		if run.SettlingTime >= 0 {
			settling = fmt.Sprintf("%gs", run.SettlingTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%.2fs\t%.4gs\t%s\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.InitialVelocity,
			run.TargetVelocity,
			run.Duration,
			run.Dt,
			settling,
			run.Controller,
		)
	}
	return w.Flush()
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print a stored run with terminal charts",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	cmd.Flags().IntVar(&svgWidth, "svg-width", 0, "also write <run_id>.svg of this width")
	cmd.Flags().IntVar(&svgHeight, "svg-height", 300, "svg height")
	return cmd
}

func showRun(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	res, meta, err := st.Result(args[0])
	if err != nil {
		return err
	}

	printSummary(os.Stdout, meta.ID, meta.Controller, res)
	fmt.Println()
	if chart := plot.ASCIIVelocity(res); chart != "" {
		fmt.Println(chart)
		fmt.Println()
	}
	if chart := plot.ASCIIError(res); chart != "" {
		fmt.Println(chart)
		fmt.Println()
	}

	if svgWidth > 0 {
		path := meta.ID + ".svg"
		if err := os.WriteFile(path, []byte(plot.SVGTrace(res, svgWidth, svgHeight)), 0644); err != nil {
			return err
		}
		fmt.Printf("svg: %s\n", path)
	}
	return nil
}

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay [run_id]",
		Short: "play a stored run back in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			res, meta, err := st.Result(args[0])
			if err != nil {
				return err
			}
			return viz.RunReplay(fmt.Sprintf("%s  %s", meta.ID, meta.Controller), res)
		},
	}
}

func newExportJSONCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write a stored run as JSON to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			return st.ExportJSON(cmd.OutOrStdout(), args[0])
		},
	}
}

func newExportCSVCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write a stored run's trajectory as CSV to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			return st.ExportCSV(cmd.OutOrStdout(), args[0])
		},
	}
}
