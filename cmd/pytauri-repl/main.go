// Command pytauri-repl is a small interactive shell over the bridge:
// every line is scheduled on an embedded JavaScript interpreter and
// awaited as a bridge future, so Ctrl+C during a long evaluation
// cancels the in-flight script instead of killing the process.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"
	"github.com/peterh/liner"

	"github.com/rakataprime/pytauri"
	"github.com/rakataprime/pytauri/jshost"
)

const (
	historyFile = ".pytauri_repl_history"
	prompt      = "js> "
)

var historyFlag = flag.String("history", "", "history file (default ~/"+historyFile+")")

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "pytauri-repl:", err)
		os.Exit(1)
	}
}

func run() error {
	host := jshost.New()
	defer host.Close()

	// Wire up the usual comforts (console.log, require) on the raw
	// runtime.  The runtime is interpreter-owned memory: gate held.
	pytauri.Holding(host.Gate(), func() {
		registry := require.NewRegistry()
		registry.Enable(host.Runtime())
		console.Enable(host.Runtime())
	})

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := historyPath()
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Println("pytauri JS repl -- Ctrl+C cancels a running script, Ctrl+D exits.")

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)

	for lineno := 1; ; lineno++ {
		src, err := ln.Prompt(prompt)
		switch err {
		case nil:
		case liner.ErrPromptAborted:
			continue
		default:
			fmt.Println()
			return nil // EOF: done here.
		}
		if src == "" {
			continue
		}
		ln.AppendHistory(src)

		// A signal during evaluation cancels the context; Eval's
		// CancelOnDrop then interrupts the interpreter.
		ctx, cancel := context.WithCancel(context.Background())
		evalDone := make(chan struct{})
		go func() {
			select {
			case <-sigc:
				cancel()
			case <-evalDone:
			}
		}()

		name := fmt.Sprintf("repl:%d", lineno)
		v, err := host.Eval(ctx, name, src)
		close(evalDone)
		cancel()

		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		pytauri.Holding(host.Gate(), func() {
			fmt.Println(v.String())
		})
	}
}

func historyPath() string {
	if *historyFlag != "" {
		return *historyFlag
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFile
	}
	return filepath.Join(home, historyFile)
}
