package ui

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/getlantern/systray"
	"github.com/svgagenius/svga-agent/internal/artifacts"
	"github.com/svgagenius/svga-agent/internal/export"
)

type Tray struct {
	exporter *export.Exporter
	store    *artifacts.Store
	apiAddr  string
	logger   *slog.Logger

	statusItem    *systray.MenuItem
	progressItem  *systray.MenuItem
	artifactsItem *systray.MenuItem

	mu sync.Mutex

	onQuit func()
}

type TrayConfig struct {
	Exporter  *export.Exporter
	Artifacts *artifacts.Store
	APIAddr   string
	Logger    *slog.Logger
	OnQuit    func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		exporter: cfg.Exporter,
		store:    cfg.Artifacts,
		apiAddr:  cfg.APIAddr,
		logger:   cfg.Logger,
		onQuit:   cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("SVGA Agent")
	systray.SetTooltip("SVGA Export Agent")

	t.statusItem = systray.AddMenuItem("Status: Idle", "Current exporter status")
	t.statusItem.Disable()

	t.progressItem = systray.AddMenuItem("Progress: -", "Active attempt progress")
	t.progressItem.Disable()

	t.artifactsItem = systray.AddMenuItem("Artifacts: 0", "Stored export artifacts")
	t.artifactsItem.Disable()

	systray.AddSeparator()

	apiItem := systray.AddMenuItem("API: "+t.apiAddr, "Local API address")
	apiItem.Disable()

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit SVGA Export Agent")

	go t.refreshLoop(quitItem.ClickedCh)

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

// refreshLoop polls the exporter and the artifact store so the menu reflects
// a running attempt without the exporter knowing about the tray.
func (t *Tray) refreshLoop(quitCh <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.refresh()
		case <-quitCh:
			t.logger.Info("quit requested from tray")
			if t.onQuit != nil {
				t.onQuit()
			}
			systray.Quit()
			return
		}
	}
}

func (t *Tray) refresh() {
	t.mu.Lock()
	defer t.mu.Unlock()

	status := t.exporter.Status()
	t.statusItem.SetTitle("Status: " + stateLabel(status))

	switch status.State {
	case export.StateCapturing, export.StateEncoding:
		t.progressItem.SetTitle(fmt.Sprintf("Progress: %d%%", status.Progress))
	default:
		t.progressItem.SetTitle("Progress: -")
	}

	if t.store != nil {
		if entries, err := t.store.List(); err == nil {
			t.artifactsItem.SetTitle(fmt.Sprintf("Artifacts: %d", len(entries)))
		}
	}
}

func stateLabel(status export.Status) string {
	switch status.State {
	case export.StateCapturing:
		if status.Phase != "" {
			return "Capturing (" + status.Phase + ")"
		}
		return "Capturing"
	case export.StateEncoding:
		if status.Phase != "" {
			return "Encoding (" + status.Phase + ")"
		}
		return "Encoding"
	case export.StateDone:
		return "Done"
	case export.StateError:
		return "Error"
	default:
		return "Idle"
	}
}

func (t *Tray) Quit() {
	systray.Quit()
}
