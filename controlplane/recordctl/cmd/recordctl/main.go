package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/malbeclabs/recordctl/controlplane/recordctl/internal/cli"
)

var (
	// Set by LDFLAGS
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	_ = godotenv.Load()

	os.Exit(int(cli.Run(cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}, os.Args[1:])))
}
