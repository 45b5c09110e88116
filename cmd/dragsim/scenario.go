package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/dragsim/internal/automation"
	"github.com/san-kum/dragsim/internal/config"
)

var saveScenario bool

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of simulations from yaml",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	cmd.Flags().BoolVar(&saveScenario, "save", false, "store every run")
	return cmd
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, "scenario")
	if err != nil {
		return err
	}

	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if sc.Description != "" {
		fmt.Printf("%s: %s\n\n", sc.Name, sc.Description)
	}

	results, err := automation.RunScenario(cmd.Context(), sc, cfg, registry, log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tCONTROLLER\tV0\tSETTLING\tID")
	for _, r := range results {
		settling := "-"
		if r.Result.Settled() {
			settling = fmt.Sprintf("%gs", r.Result.SettlingTime)
		}
		id := "-"
		if saveScenario {
			id, err = saveRun(r.Config, r.Name, r.Label, r.Result)
			if err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%g\t%s\t%s\n", r.Name, r.Label, r.Config.Vehicle.InitialVelocity, settling, id)
	}
	return w.Flush()
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-12s controller=%s v0=%g mass=%g dt=%g\n",
					name, p.Controller.Type, p.Vehicle.InitialVelocity, p.Vehicle.Mass, p.Dt)
			}
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage configuration files",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "write the default configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err == nil {
				return fmt.Errorf("%s already exists", args[0])
			}
			if err := config.Save(args[0], config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	})
	return configCmd
}
