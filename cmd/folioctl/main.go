// Command folioctl is the admin CLI for a folio server.
package main

import (
	"os"

	"github.com/kamensky/folio/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
