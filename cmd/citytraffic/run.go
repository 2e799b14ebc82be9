package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ChicagoDave/citytraffic/internal/project"
	"github.com/ChicagoDave/citytraffic/pkg/simulation"
	"github.com/ChicagoDave/citytraffic/pkg/validation"
)

func runGenerate(cmd *cobra.Command, projectPath string) error {
	p, err := loadProject(commandContext(cmd), cmd, projectPath)
	if err != nil {
		return err
	}
	summary, err := p.Export()
	if err != nil {
		return err
	}
	fmt.Printf("Network: %d intersections, %d roads, %d streetlights (seed %d)\n",
		summary.TotalIntersections, summary.TotalRoads, summary.TotalStreetlights, p.Seed)
	fmt.Printf("Exported to %s\n", p.Spec.OutputPath(p.Dir, ""))
	return nil
}

func runAnalyze(cmd *cobra.Command, projectPath string) error {
	p, err := loadProject(commandContext(cmd), cmd, projectPath)
	if err != nil {
		return err
	}
	summary, report := p.Analyze()
	printAnalysis(summary)

	if len(report.Warnings) > 0 {
		fmt.Println()
		printValidationReport(report)
	}
	return nil
}

func runValidate(cmd *cobra.Command, projectPath string) error {
	o, err := overrides(cmd)
	if err != nil {
		return err
	}
	_, report, err := project.LoadSpec(projectPath, o)
	if report == nil {
		return err
	}
	if err == nil {
		p, lerr := project.Load(commandContext(cmd), projectPath, o)
		if lerr != nil {
			report.AddError(validation.Result{Level: validation.LevelNetwork, Message: lerr.Error()})
		} else {
			_, analysisReport := p.Analyze()
			report = p.Report
			report.Merge(analysisReport)
		}
	}

	printValidationReport(report)

	if !report.Valid {
		os.Exit(1)
	}
	return nil
}

func runSimulate(cmd *cobra.Command, projectPath string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := loadProject(ctx, cmd, projectPath)
	if err != nil {
		return err
	}
	if len(p.Report.Warnings) > 0 {
		printValidationReport(p.Report)
		fmt.Println()
	}
	if _, err := p.Export(); err != nil {
		return err
	}

	sim, err := simulation.New(p.Index, p.SimulationConfig())
	if err != nil {
		return err
	}
	sink, err := p.OpenSinks(ctx)
	if err != nil {
		return err
	}

	res, err := sim.Run(ctx, sink)
	if cerr := sink.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		if ctx.Err() != nil {
			log.Warn("simulation interrupted; logs hold the completed hours")
		}
		return err
	}

	printRunSummary(p, res)
	return nil
}
