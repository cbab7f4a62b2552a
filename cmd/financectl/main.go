// Command financectl runs one-shot lookups against the asset and finance
// APIs using the same config, resolver and clients as finance-portal.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	register(commander, loadEnv)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// register adds every command to c. open builds the clients lazily so
// -help works without a reachable config.
func register(c *subcommands.Commander, open opener) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&resolveCmd{open: open}, "assets")
	c.Register(&priceCmd{open: open}, "assets")
	c.Register(&pricesCmd{open: open}, "assets")
	c.Register(&historyCmd{open: open}, "assets")
	c.Register(&watchlistCmd{open: open}, "assets")

	c.Register(&rateCmd{open: open}, "finance")
}
