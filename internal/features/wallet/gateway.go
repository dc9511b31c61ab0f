// Package wallet: gateway.go is the client for the external payment
// gateway (a Paystack-style REST API). The Gateway interface keeps the
// service testable; HTTPGateway is the production implementation.
package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/globalcluster/referral-backend/internal/config"
)

// Gateway is the outbound payment-gateway surface.
type Gateway interface {
	InitializeDeposit(ctx context.Context, email string, amount decimal.Decimal, currency string) (*DepositIntent, error)
	VerifyTransaction(ctx context.Context, reference string) (*VerifyResult, error)
	ListBanks(ctx context.Context) ([]Bank, error)
	ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*AccountInfo, error)
	Payout(ctx context.Context, amount decimal.Decimal, recipientCode, reason string) (reference string, err error)
}

// HTTPGateway talks to the gateway's REST API with the account secret key.
type HTTPGateway struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

// NewHTTPGateway builds the production gateway client.
func NewHTTPGateway(cfg *config.Config) *HTTPGateway {
	return &HTTPGateway{
		baseURL:   cfg.GatewayBaseURL,
		secretKey: cfg.GatewaySecretKey,
		client:    &http.Client{Timeout: cfg.GatewayTimeout},
	}
}

// envelope is the gateway's standard response wrapper.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (g *HTTPGateway) call(ctx context.Context, method, path string, body any, out any) error {
	var reqBody *bytes.Buffer = bytes.NewBuffer(nil)
	if body != nil {
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return fmt.Errorf("gateway request encode: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("gateway request build: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("gateway response decode: %w", err)
	}
	if resp.StatusCode >= 400 || !env.Status {
		return fmt.Errorf("gateway error (%d): %s", resp.StatusCode, env.Message)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("gateway data decode: %w", err)
		}
	}
	return nil
}

// InitializeDeposit starts a deposit. The gateway expects amounts in minor
// units (kobo for NGN).
func (g *HTTPGateway) InitializeDeposit(ctx context.Context, email string, amount decimal.Decimal, currency string) (*DepositIntent, error) {
	payload := map[string]any{
		"email":    email,
		"amount":   amount.Mul(decimal.NewFromInt(100)).IntPart(),
		"currency": currency,
	}
	var intent DepositIntent
	if err := g.call(ctx, http.MethodPost, "/transaction/initialize", payload, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// VerifyTransaction asks the gateway for the current state of a deposit.
func (g *HTTPGateway) VerifyTransaction(ctx context.Context, reference string) (*VerifyResult, error) {
	var data struct {
		Status   string `json:"status"`
		Amount   int64  `json:"amount"` // minor units
		Currency string `json:"currency"`
	}
	path := "/transaction/verify/" + url.PathEscape(reference)
	if err := g.call(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	return &VerifyResult{
		Reference: reference,
		Status:    data.Status,
		Amount:    decimal.NewFromInt(data.Amount).Div(decimal.NewFromInt(100)),
		Currency:  data.Currency,
	}, nil
}

// ListBanks returns the gateway's bank directory.
func (g *HTTPGateway) ListBanks(ctx context.Context) ([]Bank, error) {
	var banks []Bank
	if err := g.call(ctx, http.MethodGet, "/bank", nil, &banks); err != nil {
		return nil, err
	}
	return banks, nil
}

// ResolveAccount resolves an account number against a bank code.
func (g *HTTPGateway) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*AccountInfo, error) {
	var info AccountInfo
	path := fmt.Sprintf("/bank/resolve?account_number=%s&bank_code=%s",
		url.QueryEscape(accountNumber), url.QueryEscape(bankCode))
	if err := g.call(ctx, http.MethodGet, path, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Payout initiates a transfer to a previously created recipient.
func (g *HTTPGateway) Payout(ctx context.Context, amount decimal.Decimal, recipientCode, reason string) (string, error) {
	payload := map[string]any{
		"source":    "balance",
		"amount":    amount.Mul(decimal.NewFromInt(100)).IntPart(),
		"recipient": recipientCode,
		"reason":    reason,
	}
	var data struct {
		Reference string `json:"reference"`
	}
	if err := g.call(ctx, http.MethodPost, "/transfer", payload, &data); err != nil {
		return "", err
	}
	return data.Reference, nil
}
