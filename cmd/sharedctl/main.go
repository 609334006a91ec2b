// Command sharedctl runs managed-thread scenarios and YAML-defined thread
// sets against the shared and thread packages.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
