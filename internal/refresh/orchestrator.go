package refresh

import (
	"log/slog"
	"time"

	"github.com/eltribehou/AerospaceBar/internal/dispatch"
	"github.com/eltribehou/AerospaceBar/internal/state"
)

// DefaultSettleDelay is how long a workspace switch is given to settle in
// the window manager before the follow-up refresh reads its state back. The
// WM's own state is not synchronously observable right after the switch
// command returns.
const DefaultSettleDelay = 100 * time.Millisecond

// snapshotTimeout bounds how long Snapshot waits for the dispatch loop.
const snapshotTimeout = 2 * time.Second

// Gateway is the orchestrator's view of the window manager CLI. Callbacks
// are delivered on the dispatch loop and always fire, with empty results on
// failure.
type Gateway interface {
	FocusedWorkspace(cb func(string))
	Windows(cb func(string))
	Mode(cb func(string))
	ModeConfigured() bool
	SwitchWorkspace(id string)
}

// AudioSource answers synchronous queries for the current default output
// device. May return nil when no device is resolvable.
type AudioSource interface {
	CurrentDevice() *state.AudioDevice
}

// Listener receives a deep copy of the model after every completed refresh
// cycle. Listeners run on the dispatch loop and must not block.
type Listener func(state.Model)

// Orchestrator owns the view model and sequences refresh cycles:
// trigger -> gateway calls -> parse -> atomic model update -> publish.
//
// Each workspace and mode refresh carries a generation number; completions
// belonging to a superseded generation are dropped, so a slow older cycle
// can never overwrite the result of a newer one.
type Orchestrator struct {
	loop   *dispatch.Loop
	gw     Gateway
	audio  AudioSource
	settle time.Duration
	logger *slog.Logger

	// Loop-owned state. Never touched off the dispatch loop.
	model        state.Model
	listeners    []Listener
	workspaceGen uint64
	modeGen      uint64
}

// NewOrchestrator creates an orchestrator. audio may be nil when no audio
// backend is available; audio refreshes then clear the device.
func NewOrchestrator(loop *dispatch.Loop, gw Gateway, audio AudioSource, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		loop:   loop,
		gw:     gw,
		audio:  audio,
		settle: DefaultSettleDelay,
		logger: logger,
		model:  state.NewModel(),
	}
}

// Subscribe registers a listener for model updates.
func (o *Orchestrator) Subscribe(l Listener) {
	o.loop.Post(func() {
		o.listeners = append(o.listeners, l)
	})
}

// RefreshWorkspaces starts a debounce-exempt workspace refresh cycle.
func (o *Orchestrator) RefreshWorkspaces() {
	o.loop.Post(o.startWorkspaceRefresh)
}

// startWorkspaceRefresh must run on the dispatch loop.
func (o *Orchestrator) startWorkspaceRefresh() {
	o.workspaceGen++
	gen := o.workspaceGen

	o.gw.FocusedWorkspace(func(focused string) {
		if gen != o.workspaceGen {
			o.logger.Debug("dropping stale workspace refresh", "generation", gen)
			return
		}
		// The apps query is gated on the focused-workspace result so the
		// merge never pairs apps with an older focus snapshot.
		o.gw.Windows(func(raw string) {
			if gen != o.workspaceGen {
				o.logger.Debug("dropping stale windows result", "generation", gen)
				return
			}
			o.applyWorkspaces(focused, raw)
		})
	})
}

// applyWorkspaces merges one completed cycle into the model as a single
// observable update.
func (o *Orchestrator) applyWorkspaces(focused, rawWindows string) {
	apps := state.ParseWindows(rawWindows)
	if focused != "" {
		// The active workspace is always shown, even when empty.
		if _, ok := apps[focused]; !ok {
			apps[focused] = []state.AppEntry{}
		}
	}

	ids := make([]string, 0, len(apps))
	for ws := range apps {
		ids = append(ids, ws)
	}
	state.SortWorkspaces(ids)

	o.model.CurrentWorkspace = focused
	o.model.Workspaces = ids
	o.model.Apps = apps
	o.publish()
}

// RefreshMode starts a mode refresh. When no mode command is configured the
// gateway is never invoked and the mode resolves to nil.
func (o *Orchestrator) RefreshMode() {
	o.loop.Post(func() {
		o.modeGen++
		gen := o.modeGen

		if !o.gw.ModeConfigured() {
			if o.model.Mode != nil {
				o.model.Mode = nil
				o.publish()
			}
			return
		}
		o.gw.Mode(func(mode string) {
			if gen != o.modeGen {
				o.logger.Debug("dropping stale mode result", "generation", gen)
				return
			}
			o.model.Mode = &mode
			o.publish()
		})
	})
}

// RefreshAudio replaces the audio device snapshot wholesale. The query is a
// fast local call, so it runs inline on the loop.
func (o *Orchestrator) RefreshAudio() {
	o.loop.Post(func() {
		if o.audio == nil {
			o.model.Audio = nil
		} else {
			o.model.Audio = o.audio.CurrentDevice()
		}
		o.publish()
	})
}

// SwitchWorkspace issues the switch command and, after the settle delay,
// runs an immediate (non-debounced) workspace refresh so the bar reflects
// the new focus without waiting for the WM's own change notification.
func (o *Orchestrator) SwitchWorkspace(id string) {
	o.gw.SwitchWorkspace(id)
	o.loop.PostDelayed(o.settle, o.startWorkspaceRefresh)
}

// Snapshot returns a deep copy of the current model, marshalled through the
// dispatch loop. Returns an empty model if the loop is not running.
func (o *Orchestrator) Snapshot() state.Model {
	ch := make(chan state.Model, 1)
	o.loop.Post(func() {
		ch <- o.model.Clone()
	})
	select {
	case m := <-ch:
		return m
	case <-time.After(snapshotTimeout):
		o.logger.Warn("snapshot timed out waiting for dispatch loop")
		return state.NewModel()
	}
}

// SetSettleDelay overrides the post-switch settle delay. Intended for tests.
func (o *Orchestrator) SetSettleDelay(d time.Duration) {
	o.settle = d
}

func (o *Orchestrator) publish() {
	snap := o.model.Clone()
	for _, l := range o.listeners {
		l(snap)
	}
}
