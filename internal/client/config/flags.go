package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/walletkeeper/internal/flagx"
)

// parseFlags populates CLI Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   base URL of the backend HTTP API
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a"})

	fs := flag.NewFlagSet("cli", flag.ContinueOnError)
	fs.StringVar(&config.ServerEndpointAddr, "a", config.ServerEndpointAddr, "server base URL")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
