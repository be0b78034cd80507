package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"cloooock/config"
	"cloooock/core"
	"cloooock/host/monitor"
	"cloooock/host/sim"
	"cloooock/telemetry"
)

var (
	configPath = flag.String("config", "", "JSON device configuration (default: reference board)")
	bpm        = flag.Uint("bpm", 0, "Override the initial tempo")
	speed      = flag.Uint("speed", 1, "Simulated time multiplier")
	edges      = flag.Bool("edges", false, "Print every output edge")
	telem      = flag.Bool("telemetry", true, "Encode and decode status frames as the debug link would")
	verbose    = flag.Bool("verbose", false, "Enable debug log messages")
	duration   = flag.Duration("duration", 0, "Stop after this long (0 = until q or end of input)")
	tui        = flag.Bool("tui", false, "Full-screen front panel instead of console output")
)

func loadConfig() (*config.DeviceConfig, error) {
	if *configPath == "" {
		return config.DefaultConfig(), nil
	}
	data, err := os.ReadFile(*configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := config.LoadConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", *configPath, err)
	}
	return cfg, nil
}

func main() {
	flag.Parse()
	core.SetTimingEnabled(*verbose)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *bpm != 0 {
		cfg.InitialBPM = uint16(*bpm)
	}

	opts := sim.Options{
		Speed: uint32(*speed),
		Edges: *edges && !*tui,
	}

	var out io.Writer = os.Stdout
	if *tui {
		out = io.Discard
	} else {
		fmt.Println("cloooock simulator")
		fmt.Println("==================")
	}

	// Telemetry takes the same path as on hardware: frames into a pipe, the
	// monitor decoding them on the far end
	if *telem {
		rx, tx := io.Pipe()
		reporter := telemetry.NewReporter(tx)
		opts.Reporter = reporter

		core.SetDebugWriter(reporter.Log)
		core.SetDebugEnabled(*verbose)
		core.InitAsyncDebug()

		m := monitor.New(rx, out, false)
		go m.Run()
		if !*tui {
			defer m.PrintSummary()
		}
	}

	s, err := sim.New(cfg, opts, out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	if *tui {
		err = s.RunTUI(ctx)
	} else {
		sim.PrintHelp(os.Stdout)
		if restore, cerr := sim.CBreak(os.Stdin); cerr == nil {
			defer restore()
		} else {
			fmt.Println("(line input: press Enter after each key)")
		}
		err = s.Run(ctx, os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	if *verbose {
		core.DumpTimingRing()
	}
}
