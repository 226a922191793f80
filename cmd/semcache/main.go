package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/charmbracelet/fang"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := newApp(os.Stderr)
	rootCmd := NewRootCmd(version, a)
	err := fang.Execute(ctx, rootCmd)
	a.Close()
	if err != nil {
		stop()
		os.Exit(1)
	}
}
