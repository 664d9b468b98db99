// SPDX-License-Identifier: EPL-2.0

// Command audstream decodes audio files and plays them through a stream
// relay into a WAV capture.
//
// Usage:
//
//	audstream [--config file] [--log-level level] <command> [args]
//
// Commands:
//
//	play  - stream a file through a relay and capture the output
//	info  - print the properties of a decoded file
package main

import (
	"fmt"
	"os"

	"github.com/ik5/audstream/cmd/audstream/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
