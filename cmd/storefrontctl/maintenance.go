package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storefront/internal/infrastructure/mysql"
	"storefront/internal/order"
)

func migrateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the storefront tables if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(g)
			if err != nil {
				return err
			}
			db, err := e.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := mysql.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func sweepCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Fail stale unpaid online orders and delete orphaned orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(g)
			if err != nil {
				return err
			}
			db, err := e.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := order.NewSweeper(db, e.gateway(), e.cfg, e.logger).Sweep(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cutoff %s: %d expired, %d deleted, %d held\n",
				res.Cutoff.Format("2006-01-02 15:04:05"), res.Expired, res.Deleted, res.Held)
			return nil
		},
	}
}

func orphansCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "orphans",
		Short: "List orders left without items",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(g)
			if err != nil {
				return err
			}
			db, err := e.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			orders, err := order.NewSweeper(db, e.gateway(), e.cfg, e.logger).Orphans(cmd.Context())
			if err != nil {
				return err
			}
			if len(orders) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no orphaned orders")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ORDER\tSTATUS\tMETHOD\tCREATED")
			for _, o := range orders {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", o.ID, o.PaymentStatus, o.PaymentMethod, o.CreatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
}
