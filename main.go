package main

import (
	"fmt"
	"os"

	"github.com/fkorte/briefroll/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "briefroll:", err)
		os.Exit(1)
	}
}
