package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/dmitrijs2005/walletkeeper/internal/client/cli"
	"github.com/dmitrijs2005/walletkeeper/internal/client/config"
)

// commandArgs strips the flags owned by the config package, leaving the
// subcommand and its parameters.
func commandArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		if args[i] == "-a" {
			i++ // skip the value too
			continue
		}
		if strings.HasPrefix(args[i], "-a=") {
			continue
		}
		out = append(out, args[i])
	}
	return out
}

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	app := cli.NewApp(cfg)

	if err := app.Run(ctx, commandArgs(os.Args[1:])); err != nil {
		log.Fatalf("%v", err)
	}
}
