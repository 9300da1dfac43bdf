//go:build linux

package main

import (
	"os"

	"launcher/cmd"
	"launcher/internal/childinit"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == childinit.ReexecArg {
		childinit.Run(os.Args[2:])
		return
	}
	cmd.Execute()
}
