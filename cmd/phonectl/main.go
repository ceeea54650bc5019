// Command phonectl drives a running emulator from the terminal.
//
//	phonectl boot
//	phonectl open calculator
//	phonectl notify --app messages --title Hi --body "Are you up?"
//	phonectl status
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
