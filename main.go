// Command headtrack runs the tracker daemon: it owns the process-wide
// runtime session, binds the configured device, polls its pose at frame rate
// and serves the result over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cadence-vr/headtrack/api"
	"github.com/cadence-vr/headtrack/internal/config"
	"github.com/cadence-vr/headtrack/internal/eventlog"
	"github.com/cadence-vr/headtrack/internal/monitoring"
	"github.com/cadence-vr/headtrack/internal/openvr"
	"github.com/cadence-vr/headtrack/internal/posestream"
	"github.com/cadence-vr/headtrack/internal/tracker"
	"github.com/cadence-vr/headtrack/internal/version"
)

var (
	devMode     = flag.Bool("dev", false, "Run against a simulated runtime instead of real hardware")
	listen      = flag.String("listen", "", "Listen address (overrides config)")
	configPath  = flag.String("config", "", "Path to a JSON config file")
	serialFlag  = flag.String("serial", "", "Device identity to bind (overrides config; empty = first available)")
	pollHz      = flag.Int("hz", 0, "Polling rate (overrides config)")
	verbose     = flag.Bool("verbose", false, "Enable per-frame debug logging")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("headtrack %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	monitoring.SetVerbose(*verbose)

	cfg := &config.Config{}
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	listenAddr := cfg.GetListen()
	if *listen != "" {
		listenAddr = *listen
	}
	serial := cfg.GetDeviceSerial()
	if *serialFlag != "" {
		serial = *serialFlag
	}
	hz := cfg.GetPollHz()
	if *pollHz > 0 {
		hz = *pollHz
	}

	initFn := openvr.SystemInit
	if *devMode {
		initFn = simInit()
	}
	session := openvr.NewSession(initFn)
	defer session.Close()

	db, err := eventlog.NewDB(cfg.GetEventLogPath())
	if err != nil {
		log.Fatalf("failed to open event log: %v", err)
	}
	defer db.Close()

	binding := tracker.New(session)
	startTracker(session, binding, db, serial)

	stream := posestream.New(binding, hz)
	defer stream.Close()

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// polling loop; only useful once the binding is bound
	if binding.State() == tracker.StateBound {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := stream.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("polling loop terminated: %v", err)
			}
			log.Print("polling loop stopped")
		}()
	}

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()

		srv := api.NewServer(session, binding, stream, db)
		srv.AttachDebugRoutes(mux)
		db.AttachAdminRoutes(mux)
		mux.Handle("/api/", http.StripPrefix("/api", srv.ServeMux()))
		mux.Handle("/", srv.ServeMux())

		server := &http.Server{
			Addr:    listenAddr,
			Handler: mux,
		}

		go func() {
			log.Printf("headtrack %s listening on %s", version.Version, listenAddr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}()

	wg.Wait()

	if err := db.Record(eventlog.KindShutdown, "daemon stopped"); err != nil {
		log.Printf("failed to record shutdown: %v", err)
	}
	log.Printf("Graceful shutdown complete")
}

// startTracker binds the configured device and records the outcome. A failed
// bind is not fatal for the daemon: enumeration and the event log keep
// working so the user can pick a device and restart.
func startTracker(session *openvr.Session, binding *tracker.Binding, db *eventlog.DB, serial string) {
	session.With(func(c *openvr.Conn) {
		detail := "ok"
		if !c.OK() {
			detail = c.InitErr().Symbol()
		}
		if err := db.Record(eventlog.KindInit, detail); err != nil {
			log.Printf("failed to record init: %v", err)
		}
	})

	if err := binding.Start(serial); err != nil {
		log.Printf("tracker not started: %v", err)
		if dbErr := db.Record(eventlog.KindBindFail, err.Error()); dbErr != nil {
			log.Printf("failed to record bind failure: %v", dbErr)
		}
		return
	}
	log.Printf("tracker bound to device slot %d", binding.DeviceIndex())
	if err := db.RecordDevice(eventlog.KindBind, "tracker bound", serial, binding.DeviceIndex()); err != nil {
		log.Printf("failed to record bind: %v", err)
	}
}

// simInit wires a scripted runtime for dev mode: one animated HMD and a pair
// of controllers, so every caller-facing surface has live data without
// hardware.
func simInit() openvr.InitFunc {
	return func() (openvr.Runtime, openvr.InitError) {
		sim := openvr.NewSimRuntime()
		sim.SetDevice(0, openvr.SimDevice{
			Class: openvr.ClassHMD, Model: "Sim HMD", Serial: "SIM-HMD-0001",
			Connected: true, PoseValid: true,
		})
		sim.SetDevice(1, openvr.SimDevice{
			Class: openvr.ClassController, Model: "Sim Controller", Serial: "SIM-CTL-0001",
			Connected: true, PoseValid: true,
		})
		sim.SetDevice(2, openvr.SimDevice{
			Class: openvr.ClassController, Model: "Sim Controller", Serial: "SIM-CTL-0002",
			Connected: true, PoseValid: true,
		})
		sim.Animate(openvr.OrbitMotion)
		log.Print("using simulated tracking runtime")
		return sim, openvr.InitErrorNone
	}
}
