package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/deksmo/deksmo/cmd"
)

const version = "0.1.0"

func main() {
	root := cmd.NewRootCmd()

	err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	)
	os.Exit(cmd.ExitCode(err))
}
