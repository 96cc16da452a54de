package main

import (
	"bufio"
	"fmt"
	"os"

	"markab/config"
)

// newIRCBridge stands in for the real IRC bridge peripheral, which is
// out of scope for this build. It reports the configured server/channel
// and falls back to the terminal's own stdin/stdout, so --irc still
// produces a runnable host loop instead of a dead end.
func newIRCBridge(cfg *config.Config) (*bufio.Scanner, *bufio.Writer) {
	if cfg.IRC.Server != "" {
		fmt.Fprintf(os.Stderr, "markab: --irc requested %s/%s but no bridge is wired in this build; falling back to the terminal\n",
			cfg.IRC.Server, cfg.IRC.Channel)
	} else {
		fmt.Fprintln(os.Stderr, "markab: --irc requested but no bridge is wired in this build; falling back to the terminal")
	}
	return bufio.NewScanner(os.Stdin), bufio.NewWriter(os.Stdout)
}
