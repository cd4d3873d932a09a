package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"tools.zach/dev/blessing/internal/spool"
)

// ///////////////////////////////////////////////
// Daemon
// ///////////////////////////////////////////////

// serve runs the request daemon until a signal arrives on sigCh.
func serve(a *app, sigCh <-chan os.Signal) error {
	if alive, pid := checkStalePID(a.paths); alive {
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}
	token := pidToken()
	pidFile, err := writePID(a.paths, token)
	if err != nil {
		return err
	}
	defer removePID(a.paths, token, pidFile)

	slog.Info("blessing starting", "version", resolveVersion(), "data_dir", a.paths.Root)

	mgr, comp, err := a.manager()
	if err != nil {
		return err
	}
	defer comp.Close()

	watcher, err := spool.NewWatcher(a.paths.Requests())
	if err != nil {
		return err
	}
	defer watcher.Close()
	if watcher.Polling() {
		slog.Info("using polling mode for request watching")
	}

	proc := spool.NewProcessor(a.paths.Requests(), func(user string) (string, error) {
		c, err := mgr.Draw(user, time.Now())
		return c.Path, err
	})

	ticker := time.NewTicker(a.cfg.CleanupInterval())
	defer ticker.Stop()

	run(a, proc, watcher.Events(), ticker.C, sigCh)
	return nil
}

// run sweeps and answers pending requests once, then loops until sigCh
// fires: requests on every watcher event, sweeps on every tick.
func run(a *app, proc *spool.Processor, events <-chan struct{}, sweepTick <-chan time.Time, sigCh <-chan os.Signal) {
	sweepCards(a)
	processRequests(proc)

	for {
		select {
		case <-sigCh:
			slog.Info("received shutdown signal")
			return
		case <-events:
			processRequests(proc)
		case <-sweepTick:
			sweepCards(a)
		}
	}
}

func processRequests(proc *spool.Processor) {
	if _, err := proc.ProcessPending(); err != nil {
		slog.Warn("request scan failed", "error", err)
	}
}

func sweepCards(a *app) {
	if _, err := a.sweep(time.Now()); err != nil {
		slog.Error("card sweep failed", "error", err)
	}
}
