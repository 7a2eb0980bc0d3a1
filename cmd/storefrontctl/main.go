package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "storefrontctl",
		Short:         "Operate the storefront: carts, checkout and order upkeep",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&g.userID, "user", "", "act as this signed-in user id (empty for a guest)")
	rootCmd.PersistentFlags().StringVar(&g.email, "email", "", "email of the signed-in user")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level")

	rootCmd.AddCommand(migrateCmd(g))
	rootCmd.AddCommand(cartCmd(g))
	rootCmd.AddCommand(checkoutCmd(g))
	rootCmd.AddCommand(retryCmd(g))
	rootCmd.AddCommand(sweepCmd(g))
	rootCmd.AddCommand(orphansCmd(g))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
