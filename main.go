// Box Marker is a bounding box annotation editor for preparing object
// detection training data in the darknet/YOLO text format.
package main

import (
	"flag"
	"log"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"

	"box-marker/internal/app"
	"box-marker/internal/edit"
	"box-marker/internal/version"
	"box-marker/ui/mainwindow"
	"box-marker/ui/prefs"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	folder := flag.String("folder", "", "image folder to open on startup")
	flag.Parse()
	if *folder == "" && flag.NArg() > 0 {
		*folder = flag.Arg(0)
	}

	log.Printf("box-marker %s (%s)", version.Version, version.GitCommit)

	p := prefs.Load()

	fyneApp := fyneapp.NewWithID("io.github.box-marker")
	fyneApp.Settings().SetTheme(&app.BoxMarkerTheme{})

	state := app.NewState()
	cfg := edit.DefaultConfig()
	cfg.ClickTolerance = p.FloatWithFallback(prefs.KeyClickTolerance, cfg.ClickTolerance)
	cfg.MinBoxPixels = p.FloatWithFallback(prefs.KeyMinBoxPixels, cfg.MinBoxPixels)
	state.Editor.SetConfig(cfg)

	win := mainwindow.New(fyneApp, state, p)
	win.Resize(fyne.NewSize(1400, 900))

	if *folder != "" {
		win.OpenFolder(*folder)
	} else {
		win.OpenLastFolder()
	}

	setupHotReload(win)

	win.ShowAndRun()

	if err := p.Save(); err != nil {
		log.Printf("saving preferences: %v", err)
	}
}

// setupHotReload prompts for a restart when a newer binary appears,
// which happens constantly during development.
func setupHotReload(win *mainwindow.MainWindow) {
	reloader := app.NewHotReloader(2 * time.Second)
	if reloader == nil {
		return
	}
	reloader.OnNewBinary(func() {
		dialog.ShowConfirm("New Build",
			"A newer binary was built. Restart now?",
			func(restart bool) {
				if restart {
					if err := reloader.Restart(); err != nil {
						log.Printf("restart failed: %v", err)
					}
				} else {
					reloader.ResetBaseline()
					reloader.Start()
				}
			}, win)
	})
	reloader.Start()
}
