// Package device implements the per-cycle orchestration of the controller:
// button edges, the navigation FSM, temperature regulation, edge-triggered
// relay writes, run-profile persistence, and lifecycle events. All mutable
// control state lives on the Controller; there are no package globals.
package device

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/sweeney/centrifuge-ctl/internal/config"
	"github.com/sweeney/centrifuge-ctl/internal/gpio"
	"github.com/sweeney/centrifuge-ctl/internal/logic"
	"github.com/sweeney/centrifuge-ctl/internal/sensor"
)

// EventType identifies a machine lifecycle event.
type EventType string

const (
	EventPowerOn      EventType = "POWER_ON"
	EventPowerOff     EventType = "POWER_OFF"
	EventRunStarted   EventType = "RUN_STARTED"
	EventRunCompleted EventType = "RUN_COMPLETED"
	EventRunAborted   EventType = "RUN_ABORTED"
)

// Event is a machine lifecycle event produced by the control cycle.
type Event struct {
	Timestamp    time.Time
	Type         EventType
	State        logic.MachineState
	Config       logic.RunConfig
	RemainingSec int
}

// EventCounts tracks lifecycle event totals since startup.
type EventCounts struct {
	RunsStarted   int
	RunsCompleted int
	RunsAborted   int
	PowerCycles   int
}

// Controller owns the device context: run profile, power state, machine
// state, countdown, and the last applied actuator values. It is driven by
// Cycle at the poll rate and by Tick at 1Hz. The countdown is the only
// value shared between those two contexts and is accessed atomically; no
// other state crosses them.
type Controller struct {
	buttons gpio.ButtonReader
	relays  gpio.RelayBank
	sensor  sensor.Reader
	store   config.Store

	state logic.MachineState
	power bool
	cfg   logic.RunConfig
	edges logic.EdgeDetector

	// countdown and running are read by the tick handler.
	countdown atomic.Int32
	running   atomic.Bool

	applied      logic.ActuatorIntent
	appliedKnown bool
	lastTemp     float64

	counts        EventCounts
	startTime     time.Time
	lastHeartbeat time.Time
}

// New creates a powered-off Controller. Power-on happens through the power
// button edge on a later cycle; process-level hardware bring-up (opening
// chips and ports) is the caller's one-time job and is not repeated here.
func New(buttons gpio.ButtonReader, relays gpio.RelayBank, sensorReader sensor.Reader, store config.Store, startTime time.Time) *Controller {
	c := &Controller{
		buttons:       buttons,
		relays:        relays,
		sensor:        sensorReader,
		store:         store,
		state:         logic.StateHome,
		cfg:           logic.DefaultConfig(),
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
	return c
}

// Cycle runs one control iteration and returns the display intent plus any
// lifecycle events. It never blocks: every step completes and returns.
func (c *Controller) Cycle(now time.Time) (logic.DisplayIntent, []Event) {
	levels, err := c.buttons.Read()
	if err != nil {
		log.Printf("device: button read error: %v", err)
		return logic.DisplayIntent{State: c.state, Enabled: c.power}, nil
	}
	edges := c.edges.Update(levels)

	var events []Event
	intent := logic.DisplayIntent{State: c.state}

	if c.power {
		intent, events = c.poweredCycle(edges, now)
	}

	// The power edge is honored regardless of power state, after the
	// normal cycle work.
	if edges.Power {
		if c.power {
			events = append(events, c.powerOff(now))
			intent = logic.DisplayIntent{State: c.state}
		} else {
			events = append(events, c.powerOn(now))
			intent = logic.Intent(c.state, c.cfg, c.lastTemp, c.Remaining())
		}
	}

	return intent, events
}

// poweredCycle performs regulation, FSM transitions, and display intent for
// a powered-on cycle.
func (c *Controller) poweredCycle(edges logic.Edges, now time.Time) (logic.DisplayIntent, []Event) {
	// Recover from state corruption before acting on the state.
	if !c.state.Valid() {
		log.Printf("device: invalid machine state %d, resetting to HOME", c.state)
		c.setState(logic.StateHome)
	}

	var events []Event

	tempC, err := c.sensor.Read()
	if err != nil {
		log.Printf("device: sensor read error: %v", err)
		tempC = c.lastTemp // hold the last reading, keep regulating
	} else {
		c.lastTemp = tempC
	}

	c.applyIntent(logic.Regulate(tempC, c.cfg.TargetTempC, c.state))

	if ev := edges.MenuEvent(); ev != logic.EventNone {
		events = append(events, c.feed(ev, now)...)
	}

	if c.state.Running() && c.countdown.Load() < 0 {
		events = append(events, c.feed(logic.EventTimerExpired, now)...)
	}

	return logic.Intent(c.state, c.cfg, tempC, c.Remaining()), events
}

// feed runs one event through the FSM and records run lifecycle changes.
// The state change lands before the countdown reset: on run completion the
// running flag must already be clear when the countdown is restored, or a
// tick between the two atomics would decrement the fresh value.
func (c *Controller) feed(ev logic.Event, now time.Time) []Event {
	prev := c.state
	next, reset := logic.Transition(prev, ev, &c.cfg)
	c.setState(next)
	if reset {
		c.countdown.Store(int32(c.cfg.DurationSec))
	}

	var events []Event
	switch {
	case !prev.Running() && next.Running():
		c.counts.RunsStarted++
		events = append(events, c.event(EventRunStarted, next, now))
	case prev.Running() && !next.Running():
		if ev == logic.EventTimerExpired {
			c.counts.RunsCompleted++
			events = append(events, c.event(EventRunCompleted, next, now))
		} else {
			c.counts.RunsAborted++
			events = append(events, c.event(EventRunAborted, next, now))
		}
	}

	return events
}

// Tick is the 1Hz tick handler. Its only effect is the atomic countdown
// decrement while a run is active; it must never touch other state, so it
// is safe relative to the cycle's comparison against zero.
func (c *Controller) Tick() {
	if c.running.Load() {
		c.countdown.Add(-1)
	}
}

// powerOn reinitializes outputs and reloads the run profile. This is the
// explicit reinitialize step: relay defaults (fan on, heater and motor
// off), profile reload, Home state.
func (c *Controller) powerOn(now time.Time) Event {
	cfg, err := c.store.Load()
	if err != nil {
		log.Printf("device: config load: %v (using defaults)", err)
	}
	c.cfg = cfg
	c.setState(logic.StateHome)
	c.countdown.Store(int32(cfg.DurationSec))
	c.forceIntent(logic.ActuatorIntent{Fan: true})
	c.power = true
	c.counts.PowerCycles++
	log.Printf("device: power on (temp=%d rpm=%d duration=%ds)", cfg.TargetTempC, cfg.TargetRPM, cfg.DurationSec)
	return c.event(EventPowerOn, c.state, now)
}

// powerOff forces all actuators off, flushes the run profile, and disables
// the display.
func (c *Controller) powerOff(now time.Time) Event {
	c.forceIntent(logic.ActuatorIntent{})
	c.running.Store(false)
	if err := c.store.Save(c.cfg); err != nil {
		log.Printf("device: config save: %v", err)
	}
	c.power = false
	log.Printf("device: power off")
	return c.event(EventPowerOff, c.state, now)
}

// Shutdown drives a powered-on machine to the safe off state. Called once
// at process exit; a heater left energized after exit is a hazard.
func (c *Controller) Shutdown(now time.Time) []Event {
	if !c.power {
		return nil
	}
	return []Event{c.powerOff(now)}
}

// applyIntent writes each channel only when its computed intent differs
// from the last applied value, keeping relay toggling edge-triggered.
func (c *Controller) applyIntent(want logic.ActuatorIntent) {
	for ch := logic.Channel(0); ch < logic.NumChannels; ch++ {
		on := want.Get(ch)
		if c.appliedKnown && c.applied.Get(ch) == on {
			continue
		}
		if err := c.relays.Set(ch, on); err != nil {
			log.Printf("device: %s relay write error: %v", ch, err)
		}
	}
	c.applied = want
	c.appliedKnown = true
}

// forceIntent writes every channel unconditionally. Used on power
// transitions where the hardware must be driven to a known state.
func (c *Controller) forceIntent(want logic.ActuatorIntent) {
	for ch := logic.Channel(0); ch < logic.NumChannels; ch++ {
		if err := c.relays.Set(ch, want.Get(ch)); err != nil {
			log.Printf("device: %s relay write error: %v", ch, err)
		}
	}
	c.applied = want
	c.appliedKnown = true
}

func (c *Controller) setState(s logic.MachineState) {
	c.state = s
	c.running.Store(s.Running())
}

func (c *Controller) event(t EventType, state logic.MachineState, now time.Time) Event {
	return Event{
		Timestamp:    now,
		Type:         t,
		State:        state,
		Config:       c.cfg,
		RemainingSec: c.Remaining(),
	}
}

// HeartbeatData contains information for a periodic heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since
// the last heartbeat (or startup). Returns nil if the interval has not
// elapsed or if interval is <= 0 (disabled).
func (c *Controller) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}
	if now.Sub(c.lastHeartbeat) < interval {
		return nil
	}
	c.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(c.startTime),
		Counts:    c.counts,
	}
}

// State returns the current machine state.
func (c *Controller) State() logic.MachineState { return c.state }

// Powered reports whether the machine is on.
func (c *Controller) Powered() bool { return c.power }

// Config returns the current run profile.
func (c *Controller) Config() logic.RunConfig { return c.cfg }

// Remaining returns the countdown value in seconds. May be negative for
// the single cycle between tick expiry and the FSM observing it.
func (c *Controller) Remaining() int { return int(c.countdown.Load()) }

// Applied returns the last actuator values written to the relay bank.
func (c *Controller) Applied() logic.ActuatorIntent { return c.applied }

// Temperature returns the last good sensor reading.
func (c *Controller) Temperature() float64 { return c.lastTemp }

// Counts returns the lifecycle event totals since startup.
func (c *Controller) Counts() EventCounts { return c.counts }
