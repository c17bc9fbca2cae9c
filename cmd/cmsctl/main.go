// Package main provides cmsctl, a command-line client for the CMS API.
package main

import (
	"os"

	"github.com/eshaffer321/cmsclient-go/cmd/cmsctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
