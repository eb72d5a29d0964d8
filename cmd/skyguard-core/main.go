// Command skyguard-core drives the balloon cutdown flight core: a 1 Hz
// ticker wiring GPIO cut inputs, environmental/GPS sensors, the rule
// engine, the release actuator, the uplink command channel, flight-log
// persistence, the HTTP status page, and Prometheus metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/clock"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/config"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/core"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/flight"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/flightlog"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/gpio"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/metrics"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/release"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/sensors"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/status"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/telemetry"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/uplink"
	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/web"
)

func main() {
	configPath := flag.String("config", "/etc/skyguard/config.yaml", "SystemConfig YAML path")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address standing in for the Iridium modem")
	httpAddr := flag.String("http", ":80", "HTTP status/metrics address (empty to disable)")
	logPath := flag.String("flightlog", "/var/log/skyguard/flight.ndjson", "append-only flight log path")
	pinExt1 := flag.Int("pin-ext1", gpio.DefaultPinExt1, "BCM pin number for external cut input 0")
	pinExt2 := flag.Int("pin-ext2", gpio.DefaultPinExt2, "BCM pin number for external cut input 1")
	pinRelease := flag.Int("pin-release", gpio.DefaultPinRelease, "BCM pin number for the release actuator")
	configMode := flag.Bool("config-mode", false, "start in Config system mode (autonomous decisions paused)")

	flag.Parse()

	if err := run(*configPath, *broker, *httpAddr, *logPath, *pinExt1, *pinExt2, *pinRelease, *configMode); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(configPath, broker, httpAddr, logPath string, pinExt1, pinExt2, pinRelease int, configMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("config: %v (continuing with safe defaults)", err)
	}

	gpioReader, err := gpio.NewRealReader([gpio.NumCutInputs]int{pinExt1, pinExt2})
	if err != nil {
		return fmt.Errorf("init external-input gpio: %w", err)
	}
	defer gpioReader.Close()

	actuator, err := gpio.NewRealActuator(pinRelease)
	if err != nil {
		return fmt.Errorf("init release gpio: %w", err)
	}
	defer actuator.Close()

	rel, err := release.NewLatch(actuator)
	if err != nil {
		return fmt.Errorf("init release latch: %w", err)
	}

	sensorReader, err := sensors.NewRealReader()
	if err != nil {
		return fmt.Errorf("init sensors: %w", err)
	}
	defer sensorReader.Close()

	logWriter, err := flightlog.NewFileWriter(logPath)
	if err != nil {
		return fmt.Errorf("init flight log: %w", err)
	}
	defer logWriter.Close()

	uplinkClient, err := uplink.NewRealClient(broker, cfg.Device.SerialNumber)
	if err != nil {
		return fmt.Errorf("init uplink: %w", err)
	}
	defer uplinkClient.Close()

	mode := flight.Normal
	if configMode {
		mode = flight.Config
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		SerialNumber: cfg.Device.SerialNumber,
		HTTPPort:     httpAddr,
		Broker:       broker,
	})

	metricsReg, err := metrics.NewCollector(nil)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	c := core.New(cfg, mode, gpioReader, sensorReader, rel, logWriter, uplinkClient, tracker, metricsReg)

	if err := uplinkClient.Subscribe(c.HandleUplinkCommand); err != nil {
		return fmt.Errorf("subscribe uplink commands: %w", err)
	}

	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		srv.Handle("/metrics", metricsReg.Handler())
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	log.Printf("started: config=%s broker=%s mode=%s", configPath, broker, mode)

	wakeup := time.NewTicker(100 * time.Millisecond)
	defer wakeup.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	boot := time.Now()
	monotonicMS := func() uint32 { return uint32(time.Since(boot).Milliseconds()) }

	return runLoop(c, clock.NewScheduler(), wakeup.C, sigCh, time.Now, monotonicMS)
}

// runLoop wakes up on every wakeup tick (far more often than the 1 Hz
// decision cadence) and hands a real monotonic millisecond reading to
// sched.Tick, which decides whether a tick is actually due and, if so, how
// many seconds elapsed since the last one. A wakeup that's merely delayed
// (GC pause, scheduler contention, a slow sensor read) is absorbed the same
// way a stall is: the next due tick reports the true elapsed time instead of
// silently advancing by a fixed 1s, so AdvanceTime and every *_s timer stay
// in sync with wall time even when a wakeup was skipped. On shutdown it
// writes one final flight-log record and publishes a shutdown telemetry
// payload before returning, so a ground crew reviewing the log can see
// exactly when and why the process exited.
func runLoop(c *core.Core, sched *clock.Scheduler, wakeup <-chan time.Time, sig <-chan os.Signal, now func() time.Time, nowMS func() uint32) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			if c.FlightLog != nil {
				rec := flightlog.BuildRecord(c.Runtime, c.Readings)
				if err := c.FlightLog.Write(rec); err != nil {
					log.Printf("final flight log write error: %v", err)
				}
			}
			if c.Uplink != nil {
				payload, err := telemetry.FormatPayload(now(), c.Config.Device.SerialNumber, c.Runtime, c.Readings)
				if err == nil {
					if err := c.Uplink.PublishTelemetry(payload); err != nil {
						log.Printf("shutdown telemetry publish error: %v", err)
					}
				}
			}
			return nil

		case <-wakeup:
			ms := nowMS()
			due, elapsedS := sched.Tick(ms)
			if !due {
				continue
			}
			if err := c.Tick(now(), ms, elapsedS); err != nil {
				log.Printf("tick error: %v", err)
			}
			if c.Runtime.CutFired {
				log.Printf("cut fired: reason=%s t_power_s=%d", c.Runtime.CutReason, c.Runtime.TPowerS)
			}
		}
	}
}
