// Command centrifuge-ctl runs the control core of a benchtop centrifuge:
// a menu-driven state machine, a 1Hz run countdown, and a hysteresis
// temperature regulation loop driving fan, heater, and motor relays.
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

	"github.com/sweeney/centrifuge-ctl/internal/config"
	"github.com/sweeney/centrifuge-ctl/internal/device"
	"github.com/sweeney/centrifuge-ctl/internal/gpio"
	"github.com/sweeney/centrifuge-ctl/internal/logic"
	"github.com/sweeney/centrifuge-ctl/internal/mqtt"
	"github.com/sweeney/centrifuge-ctl/internal/sensor"
	"github.com/sweeney/centrifuge-ctl/internal/status"
	"github.com/sweeney/centrifuge-ctl/internal/web"
)

func main() {
	poll := flag.Duration("poll", 50*time.Millisecond, "Control cycle polling interval")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	httpAddr := flag.String("http", ":80", "HTTP status address (empty to disable)")
	configPath := flag.String("config", "/var/lib/centrifuge-ctl/profile.yaml", "Run profile file")
	sensorPort := flag.String("sensor", sensor.DefaultPort, "Temperature sensor serial port")
	sensorBaud := flag.Int("baud", sensor.DefaultBaud, "Temperature sensor baud rate")
	pinPower := flag.Int("pin-power", gpio.DefaultPinPower, "BCM pin number for the power button")
	pinBack := flag.Int("pin-back", gpio.DefaultPinBack, "BCM pin number for the back button")
	pinUp := flag.Int("pin-up", gpio.DefaultPinUp, "BCM pin number for the up button")
	pinDown := flag.Int("pin-down", gpio.DefaultPinDown, "BCM pin number for the down button")
	pinFan := flag.Int("pin-fan", gpio.DefaultPinFan, "BCM pin number for the fan relay")
	pinHeater := flag.Int("pin-heater", gpio.DefaultPinHeater, "BCM pin number for the heater relay")
	pinMotor := flag.Int("pin-motor", gpio.DefaultPinMotor, "BCM pin number for the motor relay")
	printState := flag.Bool("print-state", false, "Print current inputs and exit")

	flag.Parse()

	buttonPins := gpio.ButtonPins{Power: *pinPower, Back: *pinBack, Up: *pinUp, Down: *pinDown}
	relayPins := gpio.RelayPins{Fan: *pinFan, Heater: *pinHeater, Motor: *pinMotor}

	if err := run(*poll, *broker, *heartbeat, *httpAddr, *configPath, *sensorPort, *sensorBaud, buttonPins, relayPins, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(poll time.Duration, broker string, heartbeat time.Duration, httpAddr, configPath, sensorPort string, sensorBaud int, buttonPins gpio.ButtonPins, relayPins gpio.RelayPins, printState bool) error {
	// One-time hardware bring-up. Power-on/off cycles later reinitialize
	// state without reopening any of these.
	buttons, err := gpio.NewRealButtons(buttonPins)
	if err != nil {
		return fmt.Errorf("init buttons: %w", err)
	}
	defer buttons.Close()

	sensorReader, err := sensor.NewSerialReader(sensorPort, sensorBaud)
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	defer sensorReader.Close()

	// Print state mode
	if printState {
		levels, err := buttons.Read()
		if err != nil {
			return fmt.Errorf("read buttons: %w", err)
		}
		temp, err := sensorReader.Read()
		if err != nil {
			fmt.Printf("buttons: %+v, temperature: unavailable (%v)\n", levels, err)
			return nil
		}
		fmt.Printf("buttons: %+v, temperature: %.2f°C\n", levels, temp)
		return nil
	}

	relays, err := gpio.NewRealRelays(relayPins)
	if err != nil {
		return fmt.Errorf("init relays: %w", err)
	}
	defer relays.Close()

	store := config.NewFileStore(configPath)
	publisher := mqtt.NewRealPublisher(broker)
	defer publisher.Close()

	startTime := time.Now()
	tracker := status.NewTracker(startTime, status.Config{
		PollMs:      poll.Milliseconds(),
		HeartbeatMs: heartbeat.Milliseconds(),
		Broker:      broker,
		HTTPAddr:    httpAddr,
		SensorPort:  sensorPort,
		ConfigPath:  configPath,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

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

	// Start HTTP status server with live display stream
	var hub *web.Hub
	if httpAddr != "" {
		hub = web.NewHub()
		srv := web.New(httpAddr, tracker, hub)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	log.Printf("started: poll=%v broker=%s heartbeat=%v sensor=%s", poll, broker, heartbeat, sensorPort)

	ctrl := device.New(buttons, relays, sensorReader, store, startTime)

	cycleTicker := time.NewTicker(poll)
	defer cycleTicker.Stop()

	// The 1Hz run countdown tick, asynchronous to the cycle cadence.
	secondTicker := time.NewTicker(time.Second)
	defer secondTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(ctrl, publisher, publisher, tracker, hub, heartbeat, time.Now, cycleTicker.C, secondTicker.C, sigCh)
}

func runLoop(ctrl *device.Controller, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, hub *web.Hub, heartbeat time.Duration, now func() time.Time, cycle, tick <-chan time.Time, sig <-chan os.Signal) error {
	var lastIntent logic.DisplayIntent
	var haveIntent bool

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

			// Drive the machine to the safe off state before exit:
			// relays off, profile flushed.
			for _, ev := range ctrl.Shutdown(now()) {
				if err := publisher.Publish(ev); err != nil {
					log.Printf("publish error: %v", err)
				}
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

		case <-tick:
			ctrl.Tick()

		case t := <-cycle:
			intent, events := ctrl.Cycle(t)

			for _, ev := range events {
				log.Printf("event: %s (state=%s remaining=%ds)", ev.Type, ev.State, ev.RemainingSec)
				if err := publisher.Publish(ev); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}

			// Check for heartbeat
			if hbData := ctrl.CheckHeartbeat(t, heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%v started=%d completed=%d aborted=%d power_cycles=%d",
					hbData.Uptime, hbData.Counts.RunsStarted, hbData.Counts.RunsCompleted, hbData.Counts.RunsAborted, hbData.Counts.PowerCycles)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if mqttStatus != nil {
						tracker.SetMQTTConnected(mqttStatus.IsConnected())
					}
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			// Update status tracker for HTTP/WS consumers
			if tracker != nil {
				tracker.Update(ctrl.State(), ctrl.Powered(), ctrl.Temperature(), ctrl.Remaining(), ctrl.Config(), ctrl.Applied(), ctrl.Counts())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			// Push display changes to WebSocket clients
			if hub != nil && (!haveIntent || intent != lastIntent) {
				if frame := web.DisplayFrame(intent, t); frame != nil {
					hub.Broadcast(frame)
				}
				lastIntent = intent
				haveIntent = true
			}
		}
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
