// Command pointtiler converts point-cloud files (CSV/TXT; LAS/LAZ is an
// explicit out-of-scope stub) into a Cesium 3D Tiles 1.1 tileset: one GLB
// per tile plus a tileset.json manifest.
//
// Flag set and settings-summary printout follow the teacher
// (cmd/geotiff2pmtiles/main.go) exactly in shape, generalized from
// flag.FlagSet to a cobra command (spf13/cobra, as used by
// joeblew999-plat-geo) with an optional --config YAML layer.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mierune/point-tiler/internal/config"
	"github.com/mierune/point-tiler/internal/logging"
	"github.com/mierune/point-tiler/internal/workflow"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Errorln(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		input        []string
		output       string
		inputEPSG    int
		outputEPSG   int
		min          int
		max          int
		maxMemoryMB  int
		threads      int
		quantize     bool
		gzipCompress bool
		verbose      bool
		configFile   string
	)

	cmd := &cobra.Command{
		Use:   "pointtiler",
		Short: "Convert point clouds into a Cesium 3D Tiles tileset",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := &config.Config{
				Input: input, Output: output, InputEPSG: inputEPSG, OutputEPSG: outputEPSG,
				Min: min, Max: max, MaxMemoryMB: maxMemoryMB, Threads: threads,
				Quantize: quantize, GzipCompress: gzipCompress, Verbose: verbose,
			}

			resolved := flags
			if configFile != "" {
				fileCfg, err := config.LoadFile(configFile)
				if err != nil {
					return err
				}
				changed := map[string]bool{}
				cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
				config.MergeOverrides(fileCfg, flags, changed)
				resolved = fileCfg
			}

			if resolved.Threads <= 0 {
				resolved.Threads = workflow.DefaultThreads()
			}
			if err := resolved.Validate(); err != nil {
				return err
			}

			log := logging.New(resolved.Verbose)
			printSummary(resolved)

			opts := workflow.Options{
				Input:        resolved.Input,
				Output:       resolved.Output,
				InputEPSG:    resolved.InputEPSG,
				OutputEPSG:   resolved.OutputEPSG,
				Min:          resolved.Min,
				Max:          resolved.Max,
				MaxMemoryMB:  resolved.MaxMemoryMB,
				Threads:      resolved.Threads,
				Quantize:     resolved.Quantize,
				GzipCompress: resolved.GzipCompress,
			}
			if resolved.GzipCompress {
				log.Printf("warning: --gzip-compress has no effect; GLB/tileset output is not gzip-compressed by this pipeline")
			}
			return workflow.Run(opts, log)
		},
	}

	cmd.Flags().StringSliceVar(&input, "input", nil, "Input point-cloud glob pattern(s) (required, repeatable)")
	cmd.Flags().StringVar(&output, "output", "", "Output directory (required)")
	cmd.Flags().IntVar(&inputEPSG, "input-epsg", 0, "Input EPSG code (required)")
	cmd.Flags().IntVar(&outputEPSG, "output-epsg", 0, "Output EPSG code (required)")
	cmd.Flags().IntVar(&min, "min", 15, "Minimum zoom level")
	cmd.Flags().IntVar(&max, "max", 18, "Maximum zoom level")
	cmd.Flags().IntVar(&maxMemoryMB, "max-memory-mb", 4096, "Memory budget in MB before switching to the external-sort path")
	cmd.Flags().IntVar(&threads, "threads", 0, "Worker thread count (default: 2x cores)")
	cmd.Flags().BoolVar(&quantize, "quantize", false, "Quantize GLB vertex positions to 16 bits")
	cmd.Flags().BoolVar(&gzipCompress, "gzip-compress", false, "Accepted for compatibility; has no effect")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Verbose progress output")
	cmd.Flags().StringVar(&configFile, "config", "", "Optional YAML config file (flags override its values)")

	// input/output/input-epsg/output-epsg are required overall, but not
	// necessarily as flags: a --config file may supply them instead.
	// config.Config.Validate enforces the requirement after the merge.

	return cmd
}

// printSummary prints the teacher's aligned settings-summary table
// verbatim ("  %-14s value"), fmt.Printf to stdout.
func printSummary(c *config.Config) {
	fmt.Printf("point-tiler\n")
	logging.Summary("Input:", "%d file pattern(s)", len(c.Input))
	logging.Summary("Output:", "%s", c.Output)
	logging.Summary("EPSG:", "%d -> %d", c.InputEPSG, c.OutputEPSG)
	logging.Summary("Zoom:", "%d - %d", c.Min, c.Max)
	logging.Summary("Mem budget:", "%d MB", c.MaxMemoryMB)
	logging.Summary("Threads:", "%d", c.Threads)
	logging.Summary("Quantize:", "%v", c.Quantize)
}
