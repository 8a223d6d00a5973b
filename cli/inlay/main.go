package main

import (
	"os"

	inlaycmder "github.com/papercomputeco/inlay/cmd/inlay"
)

func main() {
	cmd := inlaycmder.NewInlayCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
