package main

import (
	"os"

	servecmder "github.com/papercomputeco/inlay/cmd/inlay/serve"
)

func main() {
	cmd := servecmder.NewServeCmd()
	cmd.Use = "inlayapi"
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .inlay/ config directory")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
