package main

import (
	"fmt"
	"os"

	"github.com/gitanomongolomon/gmm-site/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gmmctl:", err)
		os.Exit(1)
	}
}
