// cmd/hansrig/main.go
package main

import (
	"fmt"
	"os"

	"github.com/FrankJIE09/Hans-robot/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hansrig:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
