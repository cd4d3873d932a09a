//go:build windows

package main

import (
	"os"
	"os/signal"
)

// signalChannel delivers os.Interrupt, which the runtime also raises for
// CTRL_BREAK_EVENT and console close.
func signalChannel() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	return ch
}
