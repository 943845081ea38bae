package main

import (
	"os"

	"github.com/fatih/color"
)

const minInt32 = -1 << 31

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err.Error())
		os.Exit(minInt32)
	}
}
