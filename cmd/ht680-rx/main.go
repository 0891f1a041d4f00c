// Command ht680-rx decodes HT680/HT600-family remote-control transmissions
// from a GPIO pin and publishes decoded frames to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sweeney/ht680-rx/internal/gpio"
	"github.com/sweeney/ht680-rx/internal/ht680"
	"github.com/sweeney/ht680-rx/internal/mqtt"
	"github.com/sweeney/ht680-rx/internal/status"
	"github.com/sweeney/ht680-rx/internal/web"
)

func main() {
	pin := flag.Int("pin", gpio.DefaultPin, "BCM pin number of the receiver data line")
	gpioChip := flag.String("gpiochip", gpio.DefaultChip, "GPIO character device name")
	chipName := flag.String("chip", "HT680", "Transmitter chip profile (HT600, HT680, HT6207)")
	osc := flag.String("osc", "390K", "Transmitter oscillator resistor preset ("+strings.Join(ht680.PresetNames(), ", ")+")")
	fosc := flag.Uint("fosc", 0, "Oscillator frequency in kHz (overrides -osc)")
	tolerance := flag.Float64("tolerance", ht680.DefaultTolerance, "Pulse-width tolerance fraction (keep below 1/3)")
	noiseFilter := flag.Uint("noise-filter", ht680.DefaultNoiseFilterUS, "Minimum accepted pulse width in microseconds")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	httpAddr := flag.String("http", ":8080", "HTTP status address (empty to disable)")
	once := flag.Bool("once", false, "Decode a single frame, print it, and exit")

	flag.Parse()

	if err := run(*pin, *gpioChip, *chipName, *osc, uint16(*fosc), *tolerance, uint16(*noiseFilter), *broker, *heartbeat, *httpAddr, *once); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(pin int, gpioChip, chipName, osc string, fosc uint16, tolerance float64, noiseFilter uint16, broker string, heartbeat time.Duration, httpAddr string, once bool) error {
	chip, err := ht680.ChipByName(chipName)
	if err != nil {
		return err
	}

	if fosc == 0 {
		fosc, err = ht680.OscPreset(osc)
		if err != nil {
			return err
		}
	}

	// Edge timestamps from the gpio package are in microseconds, so the
	// decoder always runs at 1us per tick.
	dec, err := ht680.New(fosc, tolerance, ht680.DefaultTickLengthUS, noiseFilter)
	if err != nil {
		return err
	}

	source, err := gpio.NewRealSource(gpioChip, pin, gpio.DefaultBuffer)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer source.Close()

	// Single-shot mode: wait for one frame, print, exit.
	if once {
		for edge := range source.Events() {
			dec.HandleEdge(edge.Rising, edge.Ticks)
			if dec.Ready() {
				value, zMask := dec.Value(false), dec.ZMask(true)
				fmt.Printf("%s: value=0x%04X z_mask=0x%04X trinary=%s\n",
					chip.Name, value, zMask, ht680.Trinary(value, zMask))
				return nil
			}
		}
		return fmt.Errorf("edge source closed before a frame completed")
	}

	publisher, err := mqtt.NewRealPublisher(broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		Chip:          chip.Name,
		OscPreset:     osc,
		FoscKHz:       fosc,
		Tolerance:     tolerance,
		TickUS:        ht680.DefaultTickLengthUS,
		NoiseFilterUS: int64(noiseFilter),
		Pin:           pin,
		Broker:        broker,
		HTTPAddr:      httpAddr,
		HeartbeatMs:   heartbeat.Milliseconds(),
	})

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	log.Printf("started: chip=%s osc=%s (%d kHz) tolerance=%.0f%% noise-filter=%dus pin=%d broker=%s",
		chip.Name, osc, fosc, tolerance*100, noiseFilter, pin, broker)

	var hb <-chan time.Time
	if heartbeat > 0 {
		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()
		hb = ticker.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(source, dec, chip, publisher, publisher, tracker, time.Now, hb, sigCh)
}

func runLoop(source gpio.Source, dec *ht680.Decoder, chip ht680.Chip, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, now func() time.Time, hb <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-hb:
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				tracker.Update(dec.State(), dec.Stats(), source.Dropped())
			}
			stats := dec.Stats()
			log.Printf("heartbeat: frames=%d glitches=%d aborts=%d resyncs=%d dropped=%d",
				stats.Frames, stats.Glitches, stats.Aborts, stats.Resyncs, source.Dropped())

			hbEvent := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "HEARTBEAT",
			}
			if tracker != nil {
				snap := tracker.Snapshot()
				hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
			}
			if err := publisher.PublishSystem(hbEvent); err != nil {
				log.Printf("heartbeat publish error: %v", err)
			}

		case edge, ok := <-source.Events():
			if !ok {
				// Source ended (test scripts, or teardown).
				return nil
			}
			dec.HandleEdge(edge.Rising, edge.Ticks)
			if !dec.Ready() {
				continue
			}

			t := now()
			value, zMask := dec.Value(false), dec.ZMask(true)
			frame := mqtt.Frame{
				Timestamp: t,
				Value:     value,
				ZMask:     zMask,
				Chip:      chip.Name,
			}
			dec.Reset()

			log.Printf("frame: value=0x%04X z_mask=0x%04X trinary=%s",
				value, zMask, ht680.Trinary(value, zMask))
			if err := publisher.Publish(frame); err != nil {
				log.Printf("publish error: %v", err)
				// Don't crash on publish failure
			}

			if tracker != nil {
				tracker.SetLastFrame(status.FrameInfo{
					Time:    t,
					Value:   value,
					ZMask:   zMask,
					Trinary: ht680.Trinary(value, zMask),
				})
				tracker.Update(dec.State(), dec.Stats(), source.Dropped())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}
		}
	}
}
