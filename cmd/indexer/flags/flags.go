package flags

import (
	cli "gopkg.in/urfave/cli.v1"
)

// CommonFlags returns the base set of CLI flags the indexer accepts.
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "Path to the TOML configuration file",
			Value: "indexer.toml",
		},
		cli.StringFlag{
			Name:  "log.verbosity",
			Usage: "Logging verbosity (panic|fatal|error|warn|info|debug|trace)",
			Value: "info",
		},
		cli.StringFlag{
			Name:  "sentry.dsn",
			Usage: "Sentry DSN for error reporting; empty disables the hook",
			Value: "",
		},
	}
}

// NewApp builds the indexer's CLI app shell.
func NewApp(gitCommit, gitDate string) *cli.App {
	app := cli.NewApp()
	app.Name = "geth-indexer"
	app.Usage = "multi-chain EVM indexer and analytics service"
	app.Version = versionString(gitCommit, gitDate)
	return app
}

func versionString(gitCommit, gitDate string) string {
	if gitCommit == "" {
		return "dev"
	}
	if gitDate == "" {
		return gitCommit
	}
	return gitCommit + "-" + gitDate
}
