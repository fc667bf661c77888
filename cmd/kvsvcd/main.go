// Command kvsvcd serves the typed key-value store over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/typedkv/kvsvc/internal/kvsvcdcli"
)

func main() {
	root := kvsvcdcli.NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
