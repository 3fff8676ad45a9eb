// gohaptics demo shell: wires a playback engine, the lifecycle bus and
// the playback service together, and lets the user fire demo patterns
// from the simulation TUI or a real actuator.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"golang.org/x/exp/maps"

	"lautenbacher.net/gohaptics/config"
	"lautenbacher.net/gohaptics/engine"
	"lautenbacher.net/gohaptics/event"
	"lautenbacher.net/gohaptics/haptics"
	"lautenbacher.net/gohaptics/lifecycle"
	"lautenbacher.net/gohaptics/logging"
	"lautenbacher.net/gohaptics/util"
)

// demoPatterns are the named patterns offered in the TUI.
func demoPatterns() map[string]event.Event {
	tap := event.Single(event.WithIntensity(0.8), event.WithSharpness(0.7))

	ramp := make([]event.Event, 0, 5)
	for i := 0; i < 5; i++ {
		ramp = append(ramp, event.Single(
			event.WithIntensity(0.2*float64(i+1)),
			event.WithSharpness(0.4),
			event.At(time.Duration(i)*80*time.Millisecond),
		))
	}

	return map[string]event.Event{
		"tap":    tap,
		"double": event.Pattern(tap, tap.TimeShifted(150*time.Millisecond, 0)),
		"ramp":   event.Pattern(ramp...),
		"buzz": event.Single(
			event.WithIntensity(0.6),
			event.WithSharpness(0.2),
			event.WithSustained(true),
			event.For(500*time.Millisecond),
		),
	}
}

// buildEngine selects the playback engine. GPIO and audio fall back to
// the simulation TUI when they can't be constructed on this host; "noop"
// is for exercising the unsupported-platform path.
func buildEngine(conf *config.Config, ossignal chan os.Signal, patternNames []string) (engine.Engine, *engine.Sim) {
	wanted := conf.Engine.Type
	if conf.RealHW {
		wanted = "gpio"
	}

	switch wanted {
	case "gpio":
		eng, err := engine.NewGPIO(conf.Engine.GPIO)
		if err == nil {
			return eng, nil
		}
		slog.Warn("GPIO engine unavailable, falling back to simulation", "error", err)
	case "audio":
		eng, err := engine.NewAudio(conf.Engine.Audio)
		if err == nil {
			return eng, nil
		}
		slog.Warn("Audio engine unavailable, falling back to simulation", "error", err)
	case "noop":
		return engine.NewNoop(), nil
	}

	sim := engine.NewSim(ossignal, patternNames)
	return sim, sim
}

func main() {
	cfile := flag.String("config", config.CONFILE, "Path to the configuration file")
	realhw := flag.Bool("real", false, "Drive the real GPIO actuator")
	flag.Parse()

	conf, err := config.ReadConfig(*cfile, *realhw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	// Buffer until we know who owns the terminal; the TUI flushes into
	// its log pane, everything else flushes to stderr below.
	if err := logging.Init(logging.Options{
		Buffer: true,
		Level:  conf.Logging.Level,
		Format: conf.Logging.Format,
		File:   conf.Logging.File,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "can't initialize logging: %v\n", err)
		os.Exit(2)
	}
	defer logging.Close()

	ossignal := make(chan os.Signal, 1)
	signal.Notify(ossignal, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	patterns := demoPatterns()
	patternNames := maps.Keys(patterns)
	sort.Strings(patternNames)

	eng, sim := buildEngine(conf, ossignal, patternNames)
	if sim == nil {
		logging.SetOutput(os.Stderr)
	}

	watcher := config.NewWatcher(conf)
	if err := watcher.Start(); err != nil {
		slog.Error("Config watcher disabled", "error", err)
	} else {
		defer watcher.Stop()
	}

	bus := lifecycle.NewBus()
	defer bus.Close()

	service := haptics.New(eng, bus, haptics.WithRuntimeConfig(watcher.Updates()))
	defer service.Close()

	slog.Info("gohaptics started", "engine", conf.Engine.Type, "available", service.IsAvailable())

	if conf.Web.Enabled {
		http.HandleFunc("/api/config", config.ConfigHandler(conf.Configfile))
		go func() {
			slog.Info("Starting config web API", "listen", conf.Web.Listen)
			if err := http.ListenAndServe(conf.Web.Listen, nil); err != nil {
				slog.Error("Config web API failed", "error", err)
			}
		}()
	}

	var triggers <-chan *util.Trigger
	if sim != nil {
		triggers = sim.Triggers()
	}

	for {
		select {
		case trig := <-triggers:
			switch trig.ID {
			case engine.TriggerBackground:
				bus.Publish(lifecycle.Background)
			case engine.TriggerForeground:
				bus.Publish(lifecycle.Foreground)
			default:
				if ev, ok := patterns[trig.ID]; ok {
					service.Play(ev)
				}
			}
		case sig := <-ossignal:
			if sig == syscall.SIGHUP {
				slog.Info("Runtime settings reload is automatic; restart to change the engine")
				continue
			}
			slog.Info("Shutting down...", "signal", sig)
			return
		}
	}
}
