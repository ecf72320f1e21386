package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/ironsheep/photo-editor-mcp/internal/imaging"
	"github.com/ironsheep/photo-editor-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if Version != "dev" {
		server.Version = Version
	}

	root := newRootCmd()
	err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(Version+" ("+GitCommit+", built "+BuildTime+")"),
		fang.WithNotifySignal(os.Interrupt),
	)
	imaging.ShutdownEncoders()
	if err != nil {
		os.Exit(1)
	}
}
