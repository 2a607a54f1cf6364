package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ndelorme/quaver/internal/config"
	"github.com/ndelorme/quaver/internal/engine"
	"github.com/ndelorme/quaver/internal/errmsg"
	"github.com/ndelorme/quaver/internal/focus"
	"github.com/ndelorme/quaver/internal/library"
	"github.com/ndelorme/quaver/internal/mpris"
	"github.com/ndelorme/quaver/internal/notify"
	"github.com/ndelorme/quaver/internal/persist"
	"github.com/ndelorme/quaver/internal/player"
	"github.com/ndelorme/quaver/internal/state"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(errmsg.Format(errmsg.OpInitialize, err))
	}

	stateMgr, err := state.Open()
	if err != nil {
		logger.Fatal(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer stateMgr.Close()

	lib := library.New(stateMgr.DB(), logger)
	sources := cfg.Sources()
	if _, err := lib.Refresh(sources); err != nil {
		logger.Warn(errmsg.Format(errmsg.OpLibraryScan, err))
	}

	if cfg.ShouldWatchSources() {
		watcher, err := lib.Watch(sources)
		if err != nil {
			logger.Warn(errmsg.Format(errmsg.OpLibraryWatch, err))
		} else {
			defer watcher.Close()
		}
	}

	eng := engine.New(
		player.New(),
		focus.NewSession(logger),
		lib,
		persist.NewStore(stateMgr, logger),
		logger,
	)
	defer eng.Close()

	if cfg.ShouldRestoreOnStart() {
		if err := eng.RestoreSaved(); err != nil {
			logger.Warn(errmsg.Format(errmsg.OpQueueRestore, err))
		}
	}

	if cfg.NotificationsEnabled() {
		notifier, err := notify.New()
		if err == nil {
			notify.StartAnnouncer(eng, notifier)
		}
	}

	if cfg.MprisEnabled() {
		adapter, err := mpris.New(eng)
		if err != nil {
			logger.WithField("error", err).Warn("mpris unavailable")
		} else {
			defer adapter.Close()
		}
	}

	logger.WithField("sources", sources).Info("quaver ready")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	if err := eng.SaveNow(); err != nil {
		logger.Warn(errmsg.Format(errmsg.OpQueueSave, err))
	}
}
