package main

import (
	"log"
	"os"
	"time"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"

	appstate "mask-painter/internal/app"
	"mask-painter/internal/version"
	"mask-painter/ui/mainwindow"
	"mask-painter/ui/prefs"
)

const appTitle = "Mask Painter"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s (built %s, commit %s)",
		appTitle, version.Version, version.BuildTime, version.GitCommit)

	fyneApp := fyneapp.NewWithID("io.github.maskpainter")
	state := appstate.NewState()
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, state, appPrefs)
	win.SetTitle(appTitle)

	if len(os.Args) > 1 {
		state.LoadPhotoAsync(os.Args[1], nil)
	}

	setupHotReload(win)
	win.ShowAndRun()
}

// setupHotReload watches the binary during development and offers a
// restart when a newer build lands. Doubles as the periodic preference
// flush.
func setupHotReload(win *mainwindow.MainWindow) {
	reloader := appstate.NewHotReloader(2 * time.Second)
	if reloader == nil {
		log.Println("Hot reload disabled: cannot resolve executable path")
		return
	}
	log.Printf("Hot reload: watching %s (built %s)",
		reloader.ExecPath(), reloader.StartupTime().Format("15:04:05"))

	reloader.OnTick(win.SavePreferencesIfChanged)
	reloader.OnNewBinary(func() {
		log.Println("Hot reload: newer binary detected")
		dialog.ShowConfirm("New Build", "A newer binary is available. Restart now?",
			func(restart bool) {
				if !restart {
					reloader.ResetBaseline()
					reloader.Start()
					return
				}
				win.SavePreferences()
				if err := reloader.Restart(); err != nil {
					log.Printf("Restart failed: %v", err)
				}
			}, win.Window())
	})
	reloader.Start()
}
