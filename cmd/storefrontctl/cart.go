package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storefront/internal/cart"
	"storefront/internal/money"
	"storefront/internal/product"
)

func cartCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and edit the shopping cart",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <productId> [quantity]",
		Short: "Add a catalog product to the cart",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty := 1
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid quantity %q", args[1])
				}
				qty = n
			}

			e, err := newEnv(g)
			if err != nil {
				return err
			}
			catalog, err := product.NewModule(e.cfg.Catalog.Path, e.cfg.Payment.Currency, e.logger)
			if err != nil {
				return err
			}
			p, err := catalog.Service.GetProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			store, closeFn, err := e.openCart(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := store.Add(cmd.Context(), cart.Item{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: qty, VendorID: p.VendorID}); err != nil {
				return err
			}
			return printCart(cmd.OutOrStdout(), store, e.cfg.Payment.Currency)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <productId>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(cmd, g, func(store *cart.Store) error {
				return store.Remove(cmd.Context(), args[0])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <productId> <quantity>",
		Short: "Change a line quantity; zero removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			return withCart(cmd, g, func(store *cart.Store) error {
				return store.SetQuantity(cmd.Context(), args[0], qty)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(cmd, g, func(*cart.Store) error { return nil })
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(cmd, g, func(store *cart.Store) error {
				return store.Clear(cmd.Context())
			})
		},
	})

	return cmd
}

// withCart opens the cart, applies fn and prints the result.
func withCart(cmd *cobra.Command, g *globalFlags, fn func(*cart.Store) error) error {
	e, err := newEnv(g)
	if err != nil {
		return err
	}
	store, closeFn, err := e.openCart(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	if err := fn(store); err != nil {
		return err
	}
	return printCart(cmd.OutOrStdout(), store, e.cfg.Payment.Currency)
}

func printCart(out io.Writer, store *cart.Store, currency string) error {
	if store.IsEmpty() {
		_, err := fmt.Fprintln(out, "cart is empty")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tNAME\tQTY\tPRICE\tTOTAL")
	for _, it := range store.Items() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			it.ProductID, it.Name, it.Quantity,
			money.Format(it.Price, currency), money.Format(it.LineTotal(), currency))
	}
	fmt.Fprintf(tw, "\t\t\t\t%s\n", money.Format(store.Total(), currency))
	return tw.Flush()
}
