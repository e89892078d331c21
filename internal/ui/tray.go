// Package ui runs the optional system tray menu for the desktop service.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/getlantern/systray"
	"github.com/lacasadark/casadark-core/internal/project"
)

const refreshInterval = 5 * time.Second

type Tray struct {
	projects project.ProjectService
	runner   *project.Runner
	logger   *slog.Logger

	statusItem   *systray.MenuItem
	projectsItem *systray.MenuItem
	pauseItem    *systray.MenuItem

	mu   sync.Mutex
	stop chan struct{}

	exportsDir    string
	onOpenExports func(dir string) error
	onQuit        func()
}

type TrayConfig struct {
	Projects      project.ProjectService
	Runner        *project.Runner
	Logger        *slog.Logger
	ExportsDir    string
	OnOpenExports func(dir string) error
	OnQuit        func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		projects:      cfg.Projects,
		runner:        cfg.Runner,
		logger:        cfg.Logger,
		exportsDir:    cfg.ExportsDir,
		onOpenExports: cfg.OnOpenExports,
		onQuit:        cfg.OnQuit,
		stop:          make(chan struct{}),
	}
}

// Run blocks until the tray exits.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("Casa Dark")
	systray.SetTooltip("La Casa Dark CORE")

	t.statusItem = systray.AddMenuItem(statusLine(false, 0), "Export queue status")
	t.statusItem.Disable()

	t.projectsItem = systray.AddMenuItem("Projects: 0", "Stored projects")
	t.projectsItem.Disable()

	systray.AddSeparator()

	t.pauseItem = systray.AddMenuItem("Pause exports", "Pause the export queue")
	openItem := systray.AddMenuItem("Open exports folder", t.exportsDir)

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit La Casa Dark CORE")

	go func() {
		for {
			select {
			case <-t.pauseItem.ClickedCh:
				t.togglePause()
			case <-openItem.ClickedCh:
				t.handleOpenExports()
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

	go t.refreshLoop()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	close(t.stop)
	t.logger.Info("system tray exiting")
}

func (t *Tray) refreshLoop() {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	t.refresh()
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.refresh()
		}
	}
}

func (t *Tray) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	active := 0
	if t.runner != nil {
		active = t.runner.GetActiveJobCount(ctx)
	}
	t.UpdateStatus(active)

	if t.projects == nil {
		return
	}
	projects, err := t.projects.ListProjects(ctx)
	if err != nil {
		t.logger.Warn("tray refresh failed", "error", err)
		return
	}
	t.UpdateProjectsCount(len(projects))
}

func (t *Tray) togglePause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.runner == nil {
		return
	}

	if t.runner.IsPaused() {
		t.runner.Resume()
		t.pauseItem.SetTitle("Pause exports")
		t.statusItem.SetTitle(statusLine(false, 0))
	} else {
		t.runner.Pause()
		t.pauseItem.SetTitle("Resume exports")
		t.statusItem.SetTitle(statusLine(true, 0))
	}
}

func (t *Tray) handleOpenExports() {
	if t.onOpenExports == nil {
		return
	}
	if err := t.onOpenExports(t.exportsDir); err != nil {
		t.logger.Error("failed to open exports folder", "dir", t.exportsDir, "error", err)
	}
}

// UpdateStatus shows the number of queued or running exports.
func (t *Tray) UpdateStatus(activeJobs int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.statusItem == nil {
		return
	}
	paused := t.runner != nil && t.runner.IsPaused()
	t.statusItem.SetTitle(statusLine(paused, activeJobs))
}

func (t *Tray) UpdateProjectsCount(count int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.projectsItem == nil {
		return
	}
	t.projectsItem.SetTitle(fmt.Sprintf("Projects: %d", count))
}

func (t *Tray) Quit() {
	systray.Quit()
}

func statusLine(paused bool, activeJobs int) string {
	switch {
	case paused:
		return "Status: Paused"
	case activeJobs == 1:
		return "Status: Exporting 1 file"
	case activeJobs > 1:
		return fmt.Sprintf("Status: Exporting %d files", activeJobs)
	default:
		return "Status: Idle"
	}
}
