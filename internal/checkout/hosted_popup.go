package checkout

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"storefront/internal/payment/paystack"
)

type Initializer interface {
	Initialize(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResult, error)
}

// HostedPopup opens a gateway-hosted checkout page and asks the operator on
// the terminal whether the shopper paid.
type HostedPopup struct {
	gateway     Initializer
	callbackURL string
	in          *bufio.Reader
	out         io.Writer
}

func NewHostedPopup(gateway Initializer, callbackURL string, in io.Reader, out io.Writer) *HostedPopup {
	return &HostedPopup{
		gateway:     gateway,
		callbackURL: callbackURL,
		in:          bufio.NewReader(in),
		out:         out,
	}
}

func (p *HostedPopup) Open(ctx context.Context, req OpenRequest) (PopupOutcome, error) {
	callback := p.callbackURL
	if callback != "" {
		callback = fmt.Sprintf("%s?order=%s", strings.TrimRight(callback, "/"), req.Metadata["order_id"])
	}

	session, err := p.gateway.Initialize(ctx, paystack.InitializeRequest{
		Email:       req.Email,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Reference:   req.Reference,
		CallbackURL: callback,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return PopupOutcome{}, err
	}

	fmt.Fprintf(p.out, "Complete the payment at:\n  %s\n", session.AuthorizationURL)
	fmt.Fprint(p.out, "Press Enter once paid, or type \"cancel\": ")

	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return PopupOutcome{}, fmt.Errorf("reading confirmation: %w", err)
	}
	if strings.EqualFold(strings.TrimSpace(line), "cancel") || (err == io.EOF && strings.TrimSpace(line) == "") {
		return PopupOutcome{Cancelled: true}, nil
	}

	reference := session.Reference
	if reference == "" {
		reference = req.Reference
	}
	return PopupOutcome{Reference: reference}, nil
}
