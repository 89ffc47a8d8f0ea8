package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/wp-labs/wp-motor-sub001/pkg/config"
	"github.com/wp-labs/wp-motor-sub001/pkg/connector"
	"github.com/wp-labs/wp-motor-sub001/pkg/data"
	"github.com/wp-labs/wp-motor-sub001/pkg/engine"
	"github.com/wp-labs/wp-motor-sub001/pkg/oml"
	"github.com/wp-labs/wp-motor-sub001/pkg/provisioner"
	"github.com/wp-labs/wp-motor-sub001/pkg/router"
	"github.com/wp-labs/wp-motor-sub001/pkg/sink"
	"github.com/wp-labs/wp-motor-sub001/pkg/source"
	"github.com/wp-labs/wp-motor-sub001/pkg/stats"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// Grounded on the teacher's cmd/pipeline/main.go: flag parsing,
// version/validate early-exits, context+signal cancellation, a final
// stats dump. Substitutes config.Load's work-root tree and the
// engine/router/sink/source/stats wiring for the teacher's single
// pipeline.New(cfg)/p.Run(ctx) call, since this engine has no single
// blocking Run — each task group is driven by its own goroutines
// against the shared shutdown signal.
func main() {
	workRoot := flag.String("work_root", "", "configuration tree root (§6)")
	runMode := flag.String("run_mode", "daemon", "daemon | batch")
	maxLine := flag.Int("max_line", 0, "stop each source after this many delivered lines (0 = unbounded)")
	parseWorkers := flag.Int("parse_workers", 0, "parse task group size (0 = engine.toml's parallel)")
	speedLimit := flag.Int("speed_limit", -1, "override engine.toml's speed_limit, events/sec (-1 = use config)")
	robust := flag.Bool("robust", false, "restart a crashed parse worker instead of exiting it (overrides engine.toml)")
	statPrint := flag.Bool("stat_print", false, "override engine.toml's stat.print")
	logProfile := flag.String("log_profile", "", "text | json (overrides engine.toml's log_profile)")
	drainTimeout := flag.Duration("drain_timeout", 10*time.Second, "force an immediate shutdown if a drain hasn't finished within this")
	sinkQueue := flag.Int("sink_queue_size", 256, "per-producer channel capacity into each sink")
	showVersion := flag.Bool("version", false, "print version and exit")
	validate := flag.Bool("validate", false, "load and validate the configuration tree, then exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("wpmotor %s (built: %s)\n", version, buildTime)
		os.Exit(0)
	}
	if *workRoot == "" {
		fmt.Fprintln(os.Stderr, "Error: -work_root is required")
		os.Exit(1)
	}

	tree, err := config.Load(*workRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	if *validate {
		fmt.Println("config is valid")
		os.Exit(0)
	}

	profile := *logProfile
	if profile == "" {
		profile = tree.Engine.LogProfile
	}
	logger := newLogger(profile)
	slog.SetDefault(logger)

	logger.Info("wpmotor starting", "work_root", *workRoot, "run_mode", *runMode, "sources", len(tree.Sources), "sink_groups", len(tree.Groups), "models", len(tree.Models))

	robustMode := engine.RobustOff
	if tree.Engine.Robust || *robust {
		robustMode = engine.RobustOn
	}
	engine.SetRobustMode(robustMode)

	workers := *parseWorkers
	if workers <= 0 {
		workers = tree.Engine.Parallel
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	limit := tree.Engine.SpeedLimit
	if *speedLimit >= 0 {
		limit = *speedLimit
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.New(ctx, logger)

	sinkReg := connector.NewRegistry()
	if err := sink.RegisterAll(sinkReg); err != nil {
		fatal(logger, "register sink factories", "err", err)
	}

	sinkRuntimes := make(map[string]*engine.SinkRuntime)
	filterFuncs := make(map[string]engine.FilterFunc)
	routerGroups := make([]router.Group, 0, len(tree.Groups))
	for _, rg := range tree.Groups {
		routerGroups = append(routerGroups, rg.Group)
		for _, spec := range rg.Group.Sinks {
			if _, exists := sinkRuntimes[spec.Name]; exists {
				continue
			}
			if p, ok := provisioner.ForKind(spec.Kind); ok {
				if err := p.Provision(ctx, spec.Params); err != nil {
					fatal(logger, "provision sink resource", "sink", spec.Name, "kind", spec.Kind, "err", err)
				}
			}
			backend, err := buildSinkBackend(ctx, sinkReg, spec)
			if err != nil {
				fatal(logger, "build sink backend", "sink", spec.Name, "err", err)
			}
			sinkRuntimes[spec.Name] = eng.NewSink(spec.Name, backend, *sinkQueue, workers)
		}
		for name, way := range rg.Filters {
			f, err := compileFilter(way)
			if err != nil {
				fatal(logger, "compile sink filter", "sink", name, "err", err)
			}
			filterFuncs[name] = f
		}
	}

	rt, err := router.NewRouter(routerGroups)
	if err != nil {
		fatal(logger, "build router", "err", err)
	}
	dispatcher := engine.NewDispatcher(rt, sinkRuntimes, filterFuncs)
	modelIndex := engine.NewModelIndex(tree.Models)

	statRequires := stats.New(buildStatReqs(tree.Engine.Stat), time.Duration(tree.Engine.Stat.WindowSec)*time.Second, tree.Engine.Stat.Print || *statPrint, logger)
	defer statRequires.Stop()

	pool := eng.NewParsePool(engine.ParseConfig{
		Workers:    workers,
		QueueSize:  *sinkQueue,
		Programs:   tree.Programs,
		ModelIndex: modelIndex,
		Dispatcher: dispatcher,
		SkipParse:  tree.Engine.SkipParse,
		Stats:      statRequires,
		Logger:     logger,
	})

	var primary, derived []source.Handle
	for _, spec := range tree.Sources {
		svc, err := source.NewSvc(ctx, spec)
		if err != nil {
			fatal(logger, "build source", "source", spec.Name, "err", err)
		}
		role, _ := spec.Tags.Get("wp.role")
		if role == "derived" {
			derived = append(derived, svc.Handles()...)
		} else {
			primary = append(primary, svc.Handles()...)
		}
	}

	eng.StartPicking(engine.PickerConfig{
		Pool:       pool,
		LineMax:    *maxLine,
		SpeedLimit: limit,
		Stats:      statRequires,
		Logger:     logger,
	}, primary, derived)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("signal received, draining", "signal", sig.String())
		eng.Shutdown(engine.ShutdownDrain)
		select {
		case sig := <-sigCh:
			logger.Warn("second signal received, shutting down immediately", "signal", sig.String())
		case <-time.After(*drainTimeout):
			logger.Warn("drain timeout elapsed, shutting down immediately")
		}
		eng.Shutdown(engine.ShutdownImmediate)
		cancel()
	}()

	<-ctx.Done()
	// Sink runtimes stop their backend goroutine asynchronously off the
	// immediate context; give the last in-flight writes a moment to land
	// before the final stats dump reads a still-moving count.
	time.Sleep(200 * time.Millisecond)

	logger.Info("wpmotor stopped")
	for _, snap := range statRequires.Dump() {
		logger.Info("final stat", "stage", snap.Req.Stage.String(), "name", snap.Req.Name, "count", snap.Count)
	}
}

func newLogger(profile string) *slog.Logger {
	if profile == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func fatal(logger *slog.Logger, msg string, args ...any) {
	logger.Error(msg, args...)
	os.Exit(1)
}

func buildSinkBackend(ctx context.Context, reg *connector.Registry, spec data.SinkSpec) (sink.Backend, error) {
	factory, ok := reg.Sink(spec.Kind)
	if !ok {
		return nil, fmt.Errorf("unknown sink kind %q", spec.Kind)
	}
	ins, err := factory.Build(ctx, spec)
	if err != nil {
		return nil, err
	}
	backend, ok := ins.(sink.Backend)
	if !ok {
		return nil, fmt.Errorf("sink kind %q does not implement sink.Backend", spec.Kind)
	}
	return backend, nil
}

// compileFilter turns one sink binding's filter way table (§4.6 step
// 3: "a boolean OML pipeline") into an engine.FilterFunc, reusing the
// same config.BuildEvaluator a models/oml/*.oml item binding goes
// through, so a filter is just an oml.Evaluator that happens to
// resolve to a Bool.
func compileFilter(way map[string]any) (engine.FilterFunc, error) {
	ev, err := config.BuildEvaluator(way)
	if err != nil {
		return nil, err
	}
	return func(rec *data.DataRecord) (bool, error) {
		f, err := ev.ExtractOne(oml.EvalTarget{DataType: data.TypeBool}, data.RefOf(rec), rec)
		if err != nil {
			return false, err
		}
		return f != nil && f.Value.Kind == data.KindBool && f.Value.Bool, nil
	}, nil
}

func buildStatReqs(cfg config.StatConfig) []stats.StatReq {
	var out []stats.StatReq
	out = append(out, convertStatReqs(stats.Pick, cfg.Pick)...)
	out = append(out, convertStatReqs(stats.Parse, cfg.Parse)...)
	out = append(out, convertStatReqs(stats.Sink, cfg.Sink)...)
	return out
}

func convertStatReqs(stage stats.Stage, cfgs []config.StatReqConfig) []stats.StatReq {
	out := make([]stats.StatReq, 0, len(cfgs))
	for _, c := range cfgs {
		target := stats.TargetAll
		switch c.Target {
		case "ignore":
			target = stats.TargetIgnore
		case "":
			target = stats.TargetItem
		}
		out = append(out, stats.StatReq{
			Stage:   stage,
			Name:    c.Name,
			Target:  target,
			Item:    c.Item,
			Collect: c.Collect,
			TopN:    c.TopN,
		})
	}
	return out
}
