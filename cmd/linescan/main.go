// Command linescan aligns multiple line scan CSV files onto a common
// distance axis, averages them, and reports baseline and recovery
// statistics. The aligned table is exported as CSV; charts and an optional
// run archive are available behind flags.
//
// Usage:
//
//	linescan [flags] scan1.csv scan2.csv ...
//	linescan -archive runs.db -list
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ebsd-data/linescan.report/internal/archive"
	"github.com/ebsd-data/linescan.report/internal/chart"
	"github.com/ebsd-data/linescan.report/internal/config"
	"github.com/ebsd-data/linescan.report/internal/linescan"
	"github.com/ebsd-data/linescan.report/internal/parse"
)

func main() {
	var (
		configPath  = flag.String("config", "", "JSON pipeline config file (optional)")
		step        = flag.Float64("step", 0, "quantization step override (0 = use config/default)")
		trim        = flag.String("trim", "", "trim policy override: none or trim_to_average_max")
		window      = flag.Float64("window", -1, "baseline window override in distance units (-1 = use config/default)")
		outPath     = flag.String("out", "-", "output CSV path ('-' for stdout)")
		pngPath     = flag.String("png", "", "write a PNG chart to this path")
		htmlPath    = flag.String("html", "", "write an interactive HTML chart to this path")
		archivePath = flag.String("archive", "", "SQLite run archive path (optional)")
		listRuns    = flag.Bool("list", false, "list archived runs instead of processing scans")
	)
	flag.Parse()

	if *listRuns {
		if *archivePath == "" {
			log.Fatalf("-list requires -archive")
		}
		if err := listArchivedRuns(*archivePath); err != nil {
			log.Fatalf("Error: %v", err)
		}
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "no input files; usage: linescan [flags] scan1.csv scan2.csv ...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := resolveConfig(*configPath, *step, *trim, *window)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	scans, err := parse.ReadScanFiles(flag.Args())
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	rep, err := linescan.Run(scans, cfg)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	if err := writeTable(rep, *outPath); err != nil {
		log.Fatalf("Error: %v", err)
	}
	printSummary(rep)

	if *pngPath != "" {
		if err := chart.RenderPNG(rep, *pngPath); err != nil {
			log.Fatalf("Error: %v", err)
		}
		log.Printf("wrote chart to %s", *pngPath)
	}
	if *htmlPath != "" {
		f, err := os.Create(*htmlPath)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		err = chart.RenderHTML(rep, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		log.Printf("wrote chart to %s", *htmlPath)
	}

	if *archivePath != "" {
		a, err := archive.Open(*archivePath)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		defer a.Close()
		id, err := a.SaveRun(rep)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		log.Printf("archived run %s", id)
	}
}

// resolveConfig merges the optional config file with flag overrides. Flags
// win over the file; the file wins over defaults.
func resolveConfig(path string, step float64, trim string, window float64) (linescan.Config, error) {
	fileCfg := &config.PipelineConfig{}
	if path != "" {
		loaded, err := config.LoadPipelineConfig(path)
		if err != nil {
			return linescan.Config{}, err
		}
		fileCfg = loaded
	}
	cfg := fileCfg.Pipeline()

	if step != 0 {
		cfg.Step = step
	}
	if trim != "" {
		p, err := linescan.ParseTrimPolicy(trim)
		if err != nil {
			return linescan.Config{}, err
		}
		cfg.Trim = p
	}
	if window >= 0 {
		cfg.BaselineWindow = window
	}
	return cfg, cfg.Validate()
}

// writeTable exports the aligned table to path, or stdout for "-".
func writeTable(rep *linescan.Report, path string) error {
	if path == "-" {
		return rep.Table.WriteCSV(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	err = rep.Table.WriteCSV(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// printSummary reports the derived scalars, with undefined states shown
// explicitly rather than as misleading numbers.
func printSummary(rep *linescan.Report) {
	fmt.Fprintf(os.Stderr, "scans: %d  axis points: %d\n", len(rep.Table.Scans), rep.Table.Axis.Len())
	fmt.Fprintf(os.Stderr, "trim limit: %s\n", optional(rep.TrimLimit))
	fmt.Fprintf(os.Stderr, "baseline mean: %s  baseline std: %s (window %g, %d points)\n",
		optional(rep.Deformation.BaselineMean), optional(rep.Deformation.BaselineStd),
		rep.Deformation.Window, rep.Deformation.TailPoints)
	fmt.Fprintf(os.Stderr, "threshold: %s\n", optional(rep.Deformation.Threshold))
	if rep.Deformation.Recovery != nil {
		fmt.Fprintf(os.Stderr, "recovery distance: %g\n", *rep.Deformation.Recovery)
	} else {
		fmt.Fprintln(os.Stderr, "recovery distance: not found")
	}
}

func optional(v *float64) string {
	if v == nil {
		return "undefined"
	}
	return fmt.Sprintf("%g", *v)
}

// listArchivedRuns prints the archive contents, newest first.
func listArchivedRuns(path string) error {
	a, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer a.Close()

	runs, err := a.ListRuns(0)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no archived runs")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  scans=%d points=%d step=%g trim=%s recovery=%s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.ScanCount,
			r.AxisPoints, r.QuantizationStep, r.TrimPolicy, optional(r.Recovery))
	}
	return nil
}
