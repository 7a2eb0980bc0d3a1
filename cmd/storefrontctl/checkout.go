package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	apperrors "storefront/internal/errors"
	"storefront/internal/events"
	"storefront/internal/identity"
	"storefront/internal/money"
	orderrepo "storefront/internal/order/repository"
)

func checkoutCmd(g *globalFlags) *cobra.Command {
	var req checkout.Request

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the current cart and pay for it",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(g)
			if err != nil {
				return err
			}
			return e.withOrchestrator(cmd.Context(), cmd.OutOrStdout(), func(o *checkout.Orchestrator, _ *sql.DB) error {
				res, err := o.InitiateCheckout(cmd.Context(), e.session(), req)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), checkout.UserMessage(err))
					return err
				}
				return printResult(cmd.OutOrStdout(), res, e.cfg.Payment.Currency)
			})
		},
	}

	cmd.Flags().StringVar(&req.PaymentMethod, "payment", "card", "payment method (card, mobile-money, cash, pickup-pay)")
	cmd.Flags().StringVar(&req.DeliveryMethod, "delivery", "home", "delivery method (home, pickup)")
	cmd.Flags().StringVar(&req.DeliveryAddress, "address", "", "delivery address for home delivery")
	cmd.Flags().StringVar(&req.Contact.Email, "contact-email", "", "contact email (defaults to the signed-in user's)")
	cmd.Flags().StringVar(&req.Contact.Phone, "phone", "", "contact phone")
	cmd.Flags().StringVar(&req.PromoCode, "promo", "", "promo code")

	return cmd
}

func retryCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <orderId>",
		Short: "Reopen payment for a pending order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(g)
			if err != nil {
				return err
			}
			session := e.session()
			if session == nil {
				return apperrors.NewUnauthorizedError("retry requires --user")
			}

			return e.withOrchestrator(cmd.Context(), cmd.OutOrStdout(), func(o *checkout.Orchestrator, db *sql.DB) error {
				order, err := orderrepo.NewMySQLOrderRepository(db).FindByID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !order.OwnedBy(session.UserID) {
					return apperrors.NewNotFoundError(fmt.Sprintf("order %s not found", args[0]))
				}

				res, err := o.RetryPayment(cmd.Context(), order)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), checkout.UserMessage(err))
					return err
				}
				return printResult(cmd.OutOrStdout(), res, e.cfg.Payment.Currency)
			})
		},
	}
}

// withOrchestrator assembles a checkout orchestrator against the live
// database, cart, gateway and verification endpoint, and tears it down after fn.
func (e *env) withOrchestrator(ctx context.Context, out io.Writer, fn func(*checkout.Orchestrator, *sql.DB) error) error {
	db, err := e.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	store, closeCart, err := e.openCart(ctx)
	if err != nil {
		return err
	}
	defer closeCart()

	token := ""
	if s := e.session(); s != nil {
		token, err = identity.NewTokenService(e.cfg.Auth.JWTSecret, e.cfg.Auth.TokenTTL).Issue(s.UserID, s.Email)
		if err != nil {
			return err
		}
	}

	gateway := e.gateway()

	var publisher events.Publisher = events.Nop{}
	if len(e.cfg.Kafka.Brokers) > 0 {
		producerCtx, stop := context.WithCancel(context.Background())
		producer := events.NewProducer(e.cfg.Kafka.Brokers, e.cfg.Kafka.Topic, e.cfg.Kafka.Buffer, e.cfg.Kafka.ServiceName, e.logger)
		producer.Start(producerCtx)
		defer producer.WaitClosed()
		defer stop()
		publisher = producer
	}

	o := checkout.NewOrchestrator(checkout.Deps{
		Orders:    orderrepo.NewMySQLOrderRepository(db),
		Items:     orderrepo.NewMySQLOrderItemRepository(db),
		Promos:    orderrepo.NewMySQLPromoRepository(db),
		Cart:      store,
		Popup:     checkout.NewHostedPopup(gateway, e.cfg.Payment.CallbackBaseURL, os.Stdin, out),
		Verifier:  checkout.NewHTTPVerifier(e.cfg.Payment.VerifyEndpoint, token, e.cfg.Payment.Timeout),
		Publisher: publisher,
		Currency:  e.cfg.Payment.Currency,
		Logger:    e.logger,
	})

	return fn(o, db)
}

func printResult(out io.Writer, res *checkout.Result, currency string) error {
	fmt.Fprintf(out, "order %s %s\n", res.Order.ID, res.Outcome)
	if res.Reference != "" {
		fmt.Fprintf(out, "reference %s\n", res.Reference)
	}
	for _, it := range res.Items {
		fmt.Fprintf(out, "  %d x %s  %s\n", it.Quantity, it.ProductName, money.Format(it.LineTotal(), currency))
	}
	if res.Order.DiscountAmount > 0 {
		fmt.Fprintf(out, "discount -%s\n", money.Format(res.Order.DiscountAmount, currency))
	}
	_, err := fmt.Fprintf(out, "total %s\n", money.Format(res.Order.TotalAmount, currency))
	return err
}

var _ checkout.Cart = (*cart.Store)(nil)
