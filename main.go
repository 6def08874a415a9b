// Package main provides the entry point for the Scratch View application.
package main

import (
	"os"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/sirupsen/logrus"

	"scratch-view/internal/app"
	"scratch-view/internal/version"
	"scratch-view/ui/mainwindow"
	"scratch-view/ui/prefs"
)

func main() {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if os.Getenv("SCRATCHVIEW_DEBUG") != "" {
		log.SetLevel(logrus.DebugLevel)
	}
	log.WithField("version", version.Version).Info("starting scratch-view")

	fyneApp := fyneapp.NewWithID("scratch-view")
	fyneApp.Settings().SetTheme(&app.ViewerTheme{})

	state := app.NewState()
	state.Log = log
	appPrefs := prefs.Load()

	watcher, err := app.NewImageWatcher(state)
	if err != nil {
		log.WithError(err).Warn("image reload watcher unavailable")
	} else {
		defer watcher.Close()
	}

	win := mainwindow.New(fyneApp, state, appPrefs)

	// Open files named on the command line: images and curve spreadsheets.
	if args := os.Args[1:]; len(args) > 0 {
		go state.OpenPaths(args)
	}

	win.ShowAndRun()
}
