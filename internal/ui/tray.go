package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"

	"github.com/clipforge/clipforge-agent/internal/clips"
)

type Tray struct {
	clipSvc clips.ClipService
	session *clips.Session
	logger  *slog.Logger

	statusItem *systray.MenuItem
	clipsItem  *systray.MenuItem

	mu sync.Mutex

	onQuit func()
}

type TrayConfig struct {
	ClipService clips.ClipService
	Session     *clips.Session
	Logger      *slog.Logger
	OnQuit      func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		clipSvc: cfg.ClipService,
		session: cfg.Session,
		logger:  cfg.Logger,
		onQuit:  cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetTitle("ClipForge")
	systray.SetTooltip("ClipForge Agent")

	t.statusItem = systray.AddMenuItem("Status: Idle", "Current agent status")
	t.statusItem.Disable()

	t.clipsItem = systray.AddMenuItem("Clips: 0", "Clips in the library")
	t.clipsItem.Disable()

	systray.AddSeparator()

	saveItem := systray.AddMenuItem("Save Now", "Persist pending edits")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit ClipForge Agent")

	go func() {
		for {
			select {
			case <-saveItem.ClickedCh:
				t.handleSaveNow()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

func (t *Tray) handleSaveNow() {
	if t.session == nil {
		return
	}
	t.session.Flush(context.Background())
	t.logger.Info("clip state flushed from tray")
}

func (t *Tray) UpdateStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statusItem.SetTitle("Status: " + status)
}

func (t *Tray) UpdateClipsCount(count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clipsItem.SetTitle(fmt.Sprintf("Clips: %d", count))
}

func (t *Tray) Quit() {
	systray.Quit()
}
