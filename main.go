package main

import (
	"fmt"
	"os"

	"github.com/tphakala/lvacfs-go/cmd"
	"github.com/tphakala/lvacfs-go/internal/buildinfo"
)

// Set at build time with -ldflags "-X main.version=... -X main.buildDate=...".
var (
	version   string
	buildDate string
)

func main() {
	if err := cmd.Execute(buildinfo.NewContext(version, buildDate, "")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
