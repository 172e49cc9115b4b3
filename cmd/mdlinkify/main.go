// mdlinkify - turn plain mentions of note titles into wiki links
package main

import (
	"os"

	"github.com/ryotapoi/mdlinkify/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
