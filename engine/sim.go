package engine

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"lautenbacher.net/gohaptics/event"
	"lautenbacher.net/gohaptics/logging"
	"lautenbacher.net/gohaptics/util"
)

// Reserved trigger IDs emitted by the simulation TUI for application
// lifecycle transitions.
const (
	TriggerForeground = "foreground"
	TriggerBackground = "background"
)

const simBarWidth = 40

// Sim is the engine used for development on machines without a haptic
// actuator. It renders pulses as a decaying intensity bar in a TUI,
// shows the flushed log output in a pane, and lets the user fire demo
// patterns and lifecycle transitions from the keyboard. Triggers are
// delivered to the owning application via a channel; the engine itself
// knows nothing about patterns or the playback service.
type Sim struct {
	tviewapp     *tview.Application
	intro        *tview.TextView
	actuator     *tview.TextView
	logView      *tview.TextView
	ossignalChan chan os.Signal
	triggers     chan *util.Trigger
	sched        *scheduler
	patternKeys  map[string]string
	patternNames []string
	logFlushOnce sync.Once
	readyChan    chan bool

	mu      sync.Mutex
	started bool
	level   float64
	sharp   float64
	clearID int
}

// NewSim creates the simulation engine. The pattern names appear in the
// key help and are delivered back as trigger IDs when the user presses
// the matching digit.
func NewSim(ossignalchan chan os.Signal, patternNames []string) *Sim {
	inst := &Sim{
		ossignalChan: ossignalchan,
		triggers:     make(chan *util.Trigger, 10),
		patternKeys:  make(map[string]string, len(patternNames)),
		patternNames: patternNames,
		readyChan:    make(chan bool),
	}
	for i, name := range patternNames {
		inst.patternKeys[fmt.Sprintf("%d", i+1)] = name
	}
	inst.sched = newScheduler(inst.renderPulse)
	return inst
}

func (s *Sim) Supported() bool { return true }

// Ready returns a channel that is closed once the TUI has drawn for the
// first time and owns the log output.
func (s *Sim) Ready() <-chan bool {
	return s.readyChan
}

// Triggers returns the channel delivering user interaction events.
func (s *Sim) Triggers() <-chan *util.Trigger {
	return s.triggers
}

func (s *Sim) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.initTUI()
	s.sched.start()
	s.started = true
	return nil
}

func (s *Sim) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.mu.Unlock()

	s.sched.stop()
	logging.BufferOutput()
	if s.tviewapp != nil {
		s.tviewapp.Stop()
	}
	return nil
}

func (s *Sim) Play(pulses []event.Pulse, at time.Duration) error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return fmt.Errorf("simulation engine not started")
	}
	s.sched.submit(pulses, at)
	return nil
}

func (s *Sim) getIntroText() string {
	var keys []string
	for i, name := range s.patternNames {
		keys = append(keys, fmt.Sprintf("[blue]%d[-] %s", i+1, name))
	}
	line1 := "Patterns: " + strings.Join(keys, "  ")
	line2 := "Hit [#ff0000]b[-]/[#ff0000]f[-] for background/foreground, [#ff0000]q[-] to exit"
	line3 := "Hit [#ff0000]Up/Down[-] to scroll logs"
	return fmt.Sprintf("%s\n%s\n%s", line1, line2, line3)
}

func (s *Sim) initTUI() {
	s.tviewapp = tview.NewApplication()

	s.intro = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	s.intro.SetText(s.getIntroText())
	s.intro.SetBorder(true).SetTitle(" GOHAPTICS Simulation ").SetTitleColor(tcell.ColorLightBlue)
	s.intro.SetBackgroundColor(tcell.NewRGBColor(20, 20, 20))

	s.actuator = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	s.actuator.SetBorder(true).SetTitle(" Actuator ")
	s.actuator.SetBackgroundColor(tcell.NewRGBColor(30, 30, 30))

	s.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetChangedFunc(func() {
			s.logView.ScrollToEnd()
			s.tviewapp.Draw()
		})
	s.logView.SetBorder(true).SetTitle(" Logs ").SetTitleColor(tcell.ColorLightBlue)
	s.logView.SetBackgroundColor(tcell.NewRGBColor(40, 40, 40))

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(s.intro, 5, 0, false).
		AddItem(s.actuator, 4, 0, false).
		AddItem(s.logView, 0, 1, true)

	s.tviewapp.SetAfterDrawFunc(func(screen tcell.Screen) {
		s.logFlushOnce.Do(func() {
			logWriter := tview.ANSIWriter(s.logView)
			logging.SetOutput(logWriter)
			close(s.readyChan)
		})
	})

	s.tviewapp.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		switch ev.Key() {
		case tcell.KeyCtrlC:
			s.tviewapp.Stop()
			s.ossignalChan <- os.Interrupt
			return nil
		case tcell.KeyRune:
			key := string(ev.Rune())
			if name, exist := s.patternKeys[key]; exist {
				slog.Debug("Triggering pattern", "name", name)
				s.sendTrigger(name)
				return nil
			}
			switch key {
			case "q", "Q":
				s.ossignalChan <- os.Interrupt
				return nil
			case "r", "R":
				s.ossignalChan <- syscall.SIGHUP
				return nil
			case "b", "B":
				s.sendTrigger(TriggerBackground)
				return nil
			case "f", "F":
				s.sendTrigger(TriggerForeground)
				return nil
			}
		case tcell.KeyUp:
			row, col := s.logView.GetScrollOffset()
			s.logView.ScrollTo(row-1, col)
			return nil
		case tcell.KeyDown:
			row, col := s.logView.GetScrollOffset()
			s.logView.ScrollTo(row+1, col)
			return nil
		}
		return ev
	})

	go func() {
		if err := s.tviewapp.SetRoot(layout, true).Run(); err != nil {
			slog.Error("Error running TUI", "error", err)
			s.ossignalChan <- os.Interrupt
		}
	}()
}

func (s *Sim) sendTrigger(id string) {
	select {
	case s.triggers <- util.NewTrigger(id, time.Now()):
	default:
		slog.Warn("Dropping trigger, consumer is behind", "id", id)
	}
}

// renderPulse shows the pulse as a bar whose width follows intensity and
// whose color follows sharpness, clearing again after the pulse's hold
// time. It runs on the scheduler goroutine.
func (s *Sim) renderPulse(p event.Pulse) {
	hold := p.Duration
	if hold == 0 {
		hold = 60 * time.Millisecond
	}

	s.mu.Lock()
	s.level = clamp01(pulseIntensity(p))
	s.sharp = clamp01(pulseSharpness(p))
	s.clearID++
	id := s.clearID
	s.mu.Unlock()

	s.tviewapp.QueueUpdateDraw(s.drawActuator)

	time.AfterFunc(hold, func() {
		s.mu.Lock()
		// A newer pulse owns the display now; leave it alone.
		if s.clearID != id {
			s.mu.Unlock()
			return
		}
		s.level = 0
		s.mu.Unlock()
		s.tviewapp.QueueUpdateDraw(s.drawActuator)
	})
}

// drawActuator must be called on the TUI thread via QueueUpdateDraw.
func (s *Sim) drawActuator() {
	s.mu.Lock()
	level := s.level
	sharp := s.sharp
	s.mu.Unlock()

	if level == 0 {
		s.actuator.SetText(" [grey]idle " + strings.Repeat("·", simBarWidth))
		return
	}

	// Sharp pulses render red-ish, soft ones green-ish.
	red := int(255 * sharp)
	green := 255 - red
	width := int(level*simBarWidth + 0.5)

	var buf strings.Builder
	fmt.Fprintf(&buf, " [#%02x%02x00]%s[-]%s %.2f",
		red, green,
		strings.Repeat("█", width),
		strings.Repeat(" ", simBarWidth-width),
		level)
	s.actuator.SetText(buf.String())
}
