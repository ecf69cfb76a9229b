// Command docctl inspects serialized article bodies and editor snapshot
// tokens from the shell.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
