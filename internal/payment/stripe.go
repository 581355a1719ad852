package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeGateway uses Connect Express accounts for workers and separate charges and
// transfers for jobs.
type StripeGateway struct {
	api      *client.API
	currency string
}

func NewStripeGateway(secretKey, currency string) *StripeGateway {
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &StripeGateway{api: client.New(secretKey, nil), currency: currency}
}

func (g *StripeGateway) CreateConnectAccount(ctx context.Context, workerID uuid.UUID, email string) (string, error) {
	params := &stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(email),
		Capabilities: &stripe.AccountCapabilitiesParams{
			Transfers: &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	}
	params.Context = ctx
	params.AddMetadata("worker_id", workerID.String())
	params.SetIdempotencyKey("account-" + workerID.String())

	acct, err := g.api.Accounts.New(params)
	if err != nil {
		return "", err
	}
	return acct.ID, nil
}

func (g *StripeGateway) OnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	}
	params.Context = ctx

	link, err := g.api.AccountLinks.New(params)
	if err != nil {
		return "", err
	}
	return link.URL, nil
}

func (g *StripeGateway) GetConnectAccountStatus(ctx context.Context, accountID string) (AccountStatus, error) {
	params := &stripe.AccountParams{}
	params.Context = ctx

	acct, err := g.api.Accounts.GetByID(accountID, params)
	if err != nil {
		return AccountStatus{}, err
	}
	st := AccountStatus{
		AccountID:      acct.ID,
		ChargesEnabled: acct.ChargesEnabled,
		PayoutsEnabled: acct.PayoutsEnabled,
		CurrentlyDue:   []string{},
	}
	if acct.Requirements != nil {
		st.CurrentlyDue = append(st.CurrentlyDue, acct.Requirements.CurrentlyDue...)
	}
	return st, nil
}

func (g *StripeGateway) ProcessPayment(ctx context.Context, req PaymentRequest) (PaymentResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(MinorUnits(req.Amount)),
		Currency:      stripe.String(g.currency),
		PaymentMethod: stripe.String(req.PaymentMethodID),
		Confirm:       stripe.Bool(true),
		TransferGroup: stripe.String(req.JobID.String()),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	params.AddMetadata("job_id", req.JobID.String())
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return PaymentResult{}, err
	}
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusRequiresCapture, stripe.PaymentIntentStatusProcessing:
		return PaymentResult{PaymentID: pi.ID, Status: string(pi.Status)}, nil
	default:
		return PaymentResult{PaymentID: pi.ID, Status: string(pi.Status)},
			fmt.Errorf("payment intent %s ended in status %s", pi.ID, pi.Status)
	}
}

func (g *StripeGateway) PayWorker(ctx context.Context, req PayoutRequest) (string, error) {
	if req.AccountID == "" {
		return "", errors.New("worker has no connected account")
	}
	params := &stripe.TransferParams{
		Amount:        stripe.Int64(MinorUnits(req.Amount)),
		Currency:      stripe.String(g.currency),
		Destination:   stripe.String(req.AccountID),
		TransferGroup: stripe.String(req.JobID.String()),
	}
	params.Context = ctx
	params.AddMetadata("job_id", req.JobID.String())
	params.AddMetadata("earning_id", req.EarningID.String())
	params.SetIdempotencyKey(req.IdempotencyKey())

	tr, err := g.api.Transfers.New(params)
	if err != nil {
		return "", err
	}
	return tr.ID, nil
}

func (g *StripeGateway) CancelPayment(ctx context.Context, paymentID string) error {
	getParams := &stripe.PaymentIntentParams{}
	getParams.Context = ctx
	pi, err := g.api.PaymentIntents.Get(paymentID, getParams)
	if err != nil {
		return err
	}

	if pi.Status == stripe.PaymentIntentStatusSucceeded {
		params := &stripe.RefundParams{PaymentIntent: stripe.String(paymentID)}
		params.Context = ctx
		params.SetIdempotencyKey("refund-" + paymentID)
		_, err := g.api.Refunds.New(params)
		return err
	}

	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	_, err = g.api.PaymentIntents.Cancel(paymentID, params)
	return err
}
