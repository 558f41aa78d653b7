package main

import (
	"os"

	"github.com/docchat/docchat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
