package device

import (
	"errors"
	"testing"
	"time"

	"github.com/sweeney/centrifuge-ctl/internal/config"
	"github.com/sweeney/centrifuge-ctl/internal/gpio"
	"github.com/sweeney/centrifuge-ctl/internal/logic"
	"github.com/sweeney/centrifuge-ctl/internal/sensor"
)

// fixture drives a Controller through cycles with fakes.
type fixture struct {
	buttons *gpio.FakeButtons
	relays  *gpio.FakeRelays
	sensor  *sensor.FakeReader
	store   *config.FakeStore
	ctrl    *Controller
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	f := &fixture{
		buttons: gpio.NewFakeButtons(nil),
		relays:  gpio.NewFakeRelays(),
		sensor:  sensor.NewFakeReader(38.0),
		store:   config.NewFakeStore(),
		now:     start,
	}
	f.ctrl = New(f.buttons, f.relays, f.sensor, f.store, start)
	return f
}

// cycle runs one control cycle with the given button levels.
func (f *fixture) cycle(levels logic.Levels) (logic.DisplayIntent, []Event) {
	f.buttons.Push(levels)
	f.now = f.now.Add(50 * time.Millisecond)
	return f.ctrl.Cycle(f.now)
}

// press simulates a button press and release over two cycles and returns
// the press cycle's results.
func (f *fixture) press(levels logic.Levels) (logic.DisplayIntent, []Event) {
	intent, events := f.cycle(levels)
	f.cycle(logic.Levels{})
	return intent, events
}

// powerOn turns a fresh fixture on via the power button.
func (f *fixture) powerOn(t *testing.T) {
	t.Helper()
	f.press(logic.Levels{Power: true})
	if !f.ctrl.Powered() {
		t.Fatal("controller should be powered on")
	}
}

func TestStartsPoweredOff(t *testing.T) {
	f := newFixture(t)

	intent, events := f.cycle(logic.Levels{})
	if f.ctrl.Powered() {
		t.Error("new controller should be off")
	}
	if intent.Enabled {
		t.Error("display should be disabled while off")
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
	if f.relays.WriteCount() != 0 {
		t.Errorf("no relay writes expected while off, got %d", f.relays.WriteCount())
	}
}

func TestPowerOnDefaultsAndReload(t *testing.T) {
	f := newFixture(t)
	f.store.Record = logic.RunConfig{TargetTempC: 40, TargetRPM: 20, DurationSec: 120}
	f.store.HasRecord = true

	intent, events := f.cycle(logic.Levels{Power: true})

	if !f.ctrl.Powered() {
		t.Fatal("expected power on")
	}
	if len(events) != 1 || events[0].Type != EventPowerOn {
		t.Fatalf("expected POWER_ON event, got %+v", events)
	}
	if got := f.ctrl.Config(); got != (logic.RunConfig{TargetTempC: 40, TargetRPM: 20, DurationSec: 120}) {
		t.Errorf("config not reloaded: %+v", got)
	}
	if f.ctrl.State() != logic.StateHome {
		t.Errorf("expected HOME after power on, got %s", f.ctrl.State())
	}
	if !intent.Enabled {
		t.Error("display should be enabled after power on")
	}

	// Actuator defaults written on the power-on cycle itself: fan on,
	// heater and motor off. Regulation takes over from the next cycle.
	if !f.relays.Get(logic.ChannelFan) {
		t.Error("fan should default on at power on")
	}
	if f.relays.Get(logic.ChannelHeater) || f.relays.Get(logic.ChannelMotor) {
		t.Error("heater and motor should default off at power on")
	}

	f.cycle(logic.Levels{}) // release the power button
}

func TestPowerOffFlushesAndForcesOff(t *testing.T) {
	f := newFixture(t)
	f.store.Record = logic.RunConfig{TargetTempC: 40, TargetRPM: 20, DurationSec: 120}
	f.store.HasRecord = true
	f.powerOn(t)

	intent, events := f.press(logic.Levels{Power: true})

	if f.ctrl.Powered() {
		t.Fatal("expected power off")
	}
	if len(events) != 1 || events[0].Type != EventPowerOff {
		t.Fatalf("expected POWER_OFF event, got %+v", events)
	}
	if intent.Enabled {
		t.Error("display should be disabled after power off")
	}
	if len(f.store.Saved) != 1 {
		t.Fatalf("expected exactly one save, got %d", len(f.store.Saved))
	}
	if f.store.Saved[0] != (logic.RunConfig{TargetTempC: 40, TargetRPM: 20, DurationSec: 120}) {
		t.Errorf("saved config mismatch: %+v", f.store.Saved[0])
	}
	for ch := logic.Channel(0); ch < logic.NumChannels; ch++ {
		if f.relays.Get(ch) {
			t.Errorf("%s should be forced off at power off", ch)
		}
	}

	// Power back on: config comes back from the store.
	f.press(logic.Levels{Power: true})
	if got := f.ctrl.Config(); got != (logic.RunConfig{TargetTempC: 40, TargetRPM: 20, DurationSec: 120}) {
		t.Errorf("config not restored after power cycle: %+v", got)
	}
	if f.ctrl.Counts().PowerCycles != 2 {
		t.Errorf("expected 2 power cycles, got %d", f.ctrl.Counts().PowerCycles)
	}
}

func TestNoFSMWhilePoweredOff(t *testing.T) {
	f := newFixture(t)

	f.press(logic.Levels{Up: true})
	f.press(logic.Levels{Down: true})

	if f.ctrl.State() != logic.StateHome {
		t.Errorf("state should not move while off, got %s", f.ctrl.State())
	}
	if f.relays.WriteCount() != 0 {
		t.Error("no regulation while off")
	}
}

func TestMenuNavigation(t *testing.T) {
	f := newFixture(t)
	f.powerOn(t)

	f.press(logic.Levels{Up: true})
	if f.ctrl.State() != logic.StateTempTimeMenu {
		t.Fatalf("expected TEMP_TIME_MENU, got %s", f.ctrl.State())
	}

	f.press(logic.Levels{Up: true})
	if f.ctrl.State() != logic.StateTimeRpmMenu {
		t.Fatalf("expected TIME_RPM_MENU, got %s", f.ctrl.State())
	}

	f.press(logic.Levels{Down: true})
	if f.ctrl.State() != logic.StateSetRpm {
		t.Fatalf("expected SET_RPM, got %s", f.ctrl.State())
	}

	f.press(logic.Levels{Up: true})
	if got := f.ctrl.Config().TargetRPM; got != 16 {
		t.Errorf("expected rpm 16 after edit, got %d", got)
	}

	f.press(logic.Levels{Back: true})
	if f.ctrl.State() != logic.StateTempTimeMenu {
		t.Fatalf("expected TEMP_TIME_MENU after back, got %s", f.ctrl.State())
	}
}

func TestHeldButtonFiresOnce(t *testing.T) {
	f := newFixture(t)
	f.powerOn(t)

	// Hold up for five cycles: only the rising edge counts.
	for i := 0; i < 5; i++ {
		f.cycle(logic.Levels{Up: true})
	}
	if f.ctrl.State() != logic.StateTempTimeMenu {
		t.Errorf("held button advanced state more than once: %s", f.ctrl.State())
	}
}

func TestBackPriorityOverUpAndDown(t *testing.T) {
	f := newFixture(t)
	f.powerOn(t)
	f.press(logic.Levels{Up: true}) // TEMP_TIME_MENU

	// All three edges in the same cycle: only Back is honored.
	f.press(logic.Levels{Back: true, Up: true, Down: true})
	if f.ctrl.State() != logic.StateHome {
		t.Errorf("expected HOME (back wins), got %s", f.ctrl.State())
	}
}

func TestRunLifecycle(t *testing.T) {
	f := newFixture(t)
	f.store.Record = logic.RunConfig{TargetTempC: 38, TargetRPM: 15, DurationSec: 3}
	f.store.HasRecord = true
	f.powerOn(t)

	intent, events := f.press(logic.Levels{Down: true})
	if f.ctrl.State() != logic.StateRunRpm {
		t.Fatalf("expected RUN_RPM, got %s", f.ctrl.State())
	}
	if len(events) != 1 || events[0].Type != EventRunStarted {
		t.Fatalf("expected RUN_STARTED, got %+v", events)
	}
	if f.ctrl.Remaining() != 3 {
		t.Errorf("countdown should start at 3, got %d", f.ctrl.Remaining())
	}
	if intent.Remaining != "0:03" {
		t.Errorf("intent remaining: got %q", intent.Remaining)
	}

	// Motor turns on via regulation on the next cycle.
	f.cycle(logic.Levels{})
	if !f.relays.Get(logic.ChannelMotor) {
		t.Fatal("motor should be on during a run")
	}

	// Ticks decrement only the countdown; plain cycles don't.
	f.cycle(logic.Levels{})
	if f.ctrl.Remaining() != 3 {
		t.Errorf("plain cycle must not decrement, got %d", f.ctrl.Remaining())
	}
	for i := 0; i < 3; i++ {
		f.ctrl.Tick()
	}
	if f.ctrl.Remaining() != 0 {
		t.Errorf("expected countdown 0 after 3 ticks, got %d", f.ctrl.Remaining())
	}

	// At zero the run is still active; completion fires when the cycle
	// observes a negative countdown.
	_, events = f.cycle(logic.Levels{})
	if len(events) != 0 {
		t.Fatalf("run must not complete at 0, got %+v", events)
	}
	f.ctrl.Tick()
	_, events = f.cycle(logic.Levels{})
	if len(events) != 1 || events[0].Type != EventRunCompleted {
		t.Fatalf("expected RUN_COMPLETED, got %+v", events)
	}
	if f.ctrl.State() != logic.StateHome {
		t.Errorf("expected HOME after completion, got %s", f.ctrl.State())
	}
	if f.ctrl.Remaining() != 3 {
		t.Errorf("countdown should reset to duration, got %d", f.ctrl.Remaining())
	}

	// Motor off on the next regulation pass.
	f.cycle(logic.Levels{})
	if f.relays.Get(logic.ChannelMotor) {
		t.Error("motor should be off after the run")
	}

	counts := f.ctrl.Counts()
	if counts.RunsStarted != 1 || counts.RunsCompleted != 1 || counts.RunsAborted != 0 {
		t.Errorf("unexpected counts: %+v", counts)
	}
}

func TestRunFacetToggleKeepsCountdown(t *testing.T) {
	f := newFixture(t)
	f.powerOn(t)
	f.press(logic.Levels{Down: true}) // start run
	f.ctrl.Tick()

	f.press(logic.Levels{Up: true})
	if f.ctrl.State() != logic.StateRunTemp {
		t.Fatalf("expected RUN_TEMP, got %s", f.ctrl.State())
	}
	if f.ctrl.Remaining() != 299 {
		t.Errorf("facet toggle must not reset the countdown, got %d", f.ctrl.Remaining())
	}
}

func TestRunAbortedByBack(t *testing.T) {
	f := newFixture(t)
	f.powerOn(t)
	f.press(logic.Levels{Down: true})

	_, events := f.press(logic.Levels{Back: true})
	if len(events) != 1 || events[0].Type != EventRunAborted {
		t.Fatalf("expected RUN_ABORTED, got %+v", events)
	}
	if f.ctrl.State() != logic.StateHome {
		t.Errorf("expected HOME, got %s", f.ctrl.State())
	}
	if f.ctrl.Counts().RunsAborted != 1 {
		t.Errorf("expected 1 aborted run, got %d", f.ctrl.Counts().RunsAborted)
	}
}

// After completion the running flag is already clear when the countdown is
// restored, so a tick landing right after the completing cycle must not eat
// into the next run's duration.
func TestTickAfterCompletionDoesNotDecrement(t *testing.T) {
	f := newFixture(t)
	f.store.Record = logic.RunConfig{TargetTempC: 38, TargetRPM: 15, DurationSec: 3}
	f.store.HasRecord = true
	f.powerOn(t)
	f.press(logic.Levels{Down: true})

	for i := 0; i < 4; i++ {
		f.ctrl.Tick()
	}
	f.cycle(logic.Levels{}) // observes countdown < 0, completes the run

	f.ctrl.Tick()
	f.ctrl.Tick()
	if f.ctrl.Remaining() != 3 {
		t.Errorf("countdown after completion: got %d, want full duration 3", f.ctrl.Remaining())
	}
}

func TestTickIgnoredOutsideRun(t *testing.T) {
	f := newFixture(t)
	f.powerOn(t)

	before := f.ctrl.Remaining()
	f.ctrl.Tick()
	f.ctrl.Tick()
	if f.ctrl.Remaining() != before {
		t.Errorf("tick must not decrement outside a run: %d -> %d", before, f.ctrl.Remaining())
	}
}

// Regulation idempotence: with constant temperature and state, the relay
// bank receives no further writes after the intent is established.
func TestNoRedundantRelayWrites(t *testing.T) {
	f := newFixture(t)
	f.sensor.Set(39.5) // fan territory
	f.powerOn(t)

	f.cycle(logic.Levels{})
	n := f.relays.WriteCount()

	for i := 0; i < 20; i++ {
		f.cycle(logic.Levels{})
	}
	if got := f.relays.WriteCount(); got != n {
		t.Errorf("expected no writes after intent settled: %d -> %d", n, got)
	}
}

func TestHysteresisTransitions(t *testing.T) {
	f := newFixture(t)
	f.powerOn(t)
	f.press(logic.Levels{Down: true}) // running, target 38

	f.sensor.Set(39.5)
	f.cycle(logic.Levels{})
	if !f.relays.Get(logic.ChannelFan) || f.relays.Get(logic.ChannelHeater) {
		t.Error("39.5°C: fan on, heater off")
	}

	f.sensor.Set(36.5)
	f.cycle(logic.Levels{})
	if f.relays.Get(logic.ChannelFan) || !f.relays.Get(logic.ChannelHeater) {
		t.Error("36.5°C: heater on, fan off")
	}

	f.sensor.Set(38.0)
	f.cycle(logic.Levels{})
	if f.relays.Get(logic.ChannelFan) || f.relays.Get(logic.ChannelHeater) {
		t.Error("38.0°C: both off inside the band")
	}
}

func TestSensorErrorHoldsLastReading(t *testing.T) {
	f := newFixture(t)
	f.sensor.Set(45.0)
	f.powerOn(t)
	f.cycle(logic.Levels{})
	if !f.relays.Get(logic.ChannelFan) {
		t.Fatal("fan should be on at 45°C")
	}

	f.sensor.SetError(errFake)
	f.cycle(logic.Levels{})
	// Last good reading (45°C) still governs: fan stays on.
	if !f.relays.Get(logic.ChannelFan) {
		t.Error("fan should hold on sensor error")
	}
	if f.ctrl.Temperature() != 45.0 {
		t.Errorf("last temperature should hold, got %.1f", f.ctrl.Temperature())
	}
}

func TestButtonReadErrorSkipsCycle(t *testing.T) {
	f := newFixture(t)
	f.powerOn(t)
	before := f.ctrl.State()

	f.buttons.ReadError = errFake
	f.buttons.Push(logic.Levels{Up: true})
	_, events := f.ctrl.Cycle(f.now)

	if len(events) != 0 {
		t.Errorf("expected no events on read error, got %d", len(events))
	}
	if f.ctrl.State() != before {
		t.Errorf("state must not change on read error")
	}
}

func TestShutdownPowersOff(t *testing.T) {
	f := newFixture(t)
	f.powerOn(t)

	events := f.ctrl.Shutdown(f.now)
	if len(events) != 1 || events[0].Type != EventPowerOff {
		t.Fatalf("expected POWER_OFF on shutdown, got %+v", events)
	}
	if len(f.store.Saved) != 1 {
		t.Errorf("shutdown should flush config, saves=%d", len(f.store.Saved))
	}

	// Already off: nothing to do.
	if events := f.ctrl.Shutdown(f.now); events != nil {
		t.Errorf("second shutdown should be a no-op, got %+v", events)
	}
}

func TestHeartbeat(t *testing.T) {
	f := newFixture(t)
	start := f.now

	if hb := f.ctrl.CheckHeartbeat(start.Add(time.Minute), 0); hb != nil {
		t.Error("disabled heartbeat must return nil")
	}
	if hb := f.ctrl.CheckHeartbeat(start.Add(time.Minute), 15*time.Minute); hb != nil {
		t.Error("heartbeat before interval must return nil")
	}

	hb := f.ctrl.CheckHeartbeat(start.Add(15*time.Minute), 15*time.Minute)
	if hb == nil {
		t.Fatal("expected heartbeat at interval")
	}
	if hb.Uptime != 15*time.Minute {
		t.Errorf("uptime: got %v", hb.Uptime)
	}

	// Interval restarts from the last heartbeat.
	if hb := f.ctrl.CheckHeartbeat(start.Add(16*time.Minute), 15*time.Minute); hb != nil {
		t.Error("heartbeat should not re-fire inside the next interval")
	}
}

var errFake = errors.New("injected failure")
