package main

import (
	"context"
	"log"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
)

const configFlag = "config"

var rootFlags = map[string]cobraflags.Flag{
	configFlag: &cobraflags.StringFlag{
		Name:  configFlag,
		Value: "",
		Usage: "Optional config file (yaml, json, toml or env); environment variables override it",
	},
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "ewarranty",
		Short:         "Storefront API with warranty registration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveCommand,
	}
	cobraflags.RegisterMap(root, rootFlags)
	root.PersistentFlags().AddFlagSet(root.Flags())

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE:  serveCommand,
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE:  migrateCommand,
	})
	root.AddCommand(newAdminCommand())
	return root
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		log.Printf("[fatal] %v", err)
		os.Exit(1)
	}
}
