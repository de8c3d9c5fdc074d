// Package plaid is the adapter for the bank-data aggregator. The rest of
// the system treats it as a black box that answers two questions per card:
// what do the balances and statement metadata look like right now, and what
// transactions exist.
package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/apexfin/cardcycle/internal/domain"
	"github.com/apexfin/cardcycle/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("infra/plaid")

// TokenStore resolves the access token for an aggregator connection (item).
type TokenStore interface {
	GetItemAccessToken(ctx context.Context, itemID string) (string, error)
}

// Client calls the aggregator's REST API with retry, circuit breaker, and a
// bulkhead capping concurrent outbound fetches.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
	tokens     TokenStore
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
	logger     *zap.Logger
}

// NewClient creates an aggregator client.
func NewClient(httpClient *http.Client, baseURL, clientID, secret string, tokens TokenStore, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	maxConcurrency := cfg.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		clientID:   clientID,
		secret:     secret,
		tokens:     tokens,
		cb:         cb,
		cfg:        cfg,
		bulkhead:   resilience.NewBulkhead(maxConcurrency),
		logger:     logger,
	}
}

// post sends one authenticated JSON request and decodes the response into out.
func (c *Client) post(ctx context.Context, path string, payload map[string]any, out any) error {
	payload["client_id"] = c.clientID
	payload["secret"] = c.secret

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			ErrorCode    string `json:"error_code"`
			ErrorMessage string `json:"error_message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		c.logger.Warn("plaid: non-200 response",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("error_code", apiErr.ErrorCode),
		)
		return fmt.Errorf("aggregator %s returned %d (%s): %s", path, resp.StatusCode, apiErr.ErrorCode, apiErr.ErrorMessage)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// guarded runs fn under the bulkhead, circuit breaker, and retry policy.
func (c *Client) guarded(ctx context.Context, fn func() error) error {
	if err := c.bulkhead.Acquire(ctx); err != nil {
		return err
	}
	defer c.bulkhead.Release()

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, fn)
	})
	return err
}

// --- Balances and statement metadata ---

type balanceAccount struct {
	AccountID    string `json:"account_id"`
	Name         string `json:"name"`
	OfficialName string `json:"official_name"`
	Mask         string `json:"mask"`
	Balances     struct {
		Current   *float64 `json:"current"`
		Available *float64 `json:"available"`
		Limit     *float64 `json:"limit"`
	} `json:"balances"`
}

type creditLiability struct {
	AccountID              string   `json:"account_id"`
	LastStatementIssueDate *string  `json:"last_statement_issue_date"`
	LastStatementBalance   *float64 `json:"last_statement_balance"`
	NextPaymentDueDate     *string  `json:"next_payment_due_date"`
	MinimumPaymentAmount   *float64 `json:"minimum_payment_amount"`
	OriginationDate        *string  `json:"origination_date"`
}

// GetCardSnapshot fetches the card's balances plus whatever statement
// metadata the issuer exposes through the liabilities product.
func (c *Client) GetCardSnapshot(ctx context.Context, itemID, accountID string) (*domain.CardSnapshot, error) {
	ctx, span := tracer.Start(ctx, "Plaid.GetCardSnapshot")
	defer span.End()
	span.SetAttributes(
		attribute.String("item.id", itemID),
		attribute.String("account.id", accountID),
	)

	token, err := c.tokens.GetItemAccessToken(ctx, itemID)
	if err != nil {
		return nil, err
	}

	var snapshot *domain.CardSnapshot
	err = c.guarded(ctx, func() error {
		var balResp struct {
			Accounts []balanceAccount `json:"accounts"`
		}
		payload := map[string]any{
			"access_token": token,
			"options":      map[string]any{"account_ids": []string{accountID}},
		}
		if err := c.post(ctx, "/accounts/balance/get", payload, &balResp); err != nil {
			return err
		}
		if len(balResp.Accounts) == 0 {
			return &domain.ErrNotFound{Resource: "aggregator account", ID: accountID}
		}
		acct := balResp.Accounts[0]

		s := &domain.CardSnapshot{
			AccountID:       acct.AccountID,
			Name:            acct.Name,
			Mask:            acct.Mask,
			BalanceCurrent:  acct.Balances.Current,
			AvailableCredit: acct.Balances.Available,
			CreditLimit:     acct.Balances.Limit,
		}
		if acct.OfficialName != "" {
			s.Name = acct.OfficialName
		}

		// Statement metadata is optional: not every institution supports the
		// liabilities product, and a refusal here must not fail the sync.
		var liabResp struct {
			Liabilities struct {
				Credit []creditLiability `json:"credit"`
			} `json:"liabilities"`
		}
		liabPayload := map[string]any{
			"access_token": token,
			"options":      map[string]any{"account_ids": []string{accountID}},
		}
		if err := c.post(ctx, "/liabilities/get", liabPayload, &liabResp); err != nil {
			c.logger.Debug("plaid: liabilities unavailable",
				zap.String("account_id", accountID),
				zap.Error(err),
			)
		} else {
			for _, l := range liabResp.Liabilities.Credit {
				if l.AccountID != accountID {
					continue
				}
				s.LastStatementBalance = l.LastStatementBalance
				s.LastStatementDate = parseDatePtr(l.LastStatementIssueDate)
				s.NextDueDate = parseDatePtr(l.NextPaymentDueDate)
				s.MinimumPayment = l.MinimumPaymentAmount
				s.OpenedAt = parseDatePtr(l.OriginationDate)
			}
		}

		snapshot = s
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "aggregator", Err: err}
	}
	return snapshot, nil
}

// --- Transaction feed ---

type feedTransaction struct {
	TransactionID  string  `json:"transaction_id"`
	AccountID      string  `json:"account_id"`
	Name           string  `json:"name"`
	Amount         float64 `json:"amount"`
	Date           string  `json:"date"`
	AuthorizedDate *string `json:"authorized_date"`
	Pending        bool    `json:"pending"`
}

// GetTransactions pulls the full transaction feed for one account, paging
// until the aggregator reports no more rows.
func (c *Client) GetTransactions(ctx context.Context, itemID, accountID string) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Plaid.GetTransactions")
	defer span.End()
	span.SetAttributes(
		attribute.String("item.id", itemID),
		attribute.String("account.id", accountID),
	)

	token, err := c.tokens.GetItemAccessToken(ctx, itemID)
	if err != nil {
		return nil, err
	}

	const pageSize = 500
	endDate := time.Now().UTC().Format("2006-01-02")
	startDate := time.Now().UTC().AddDate(-2, 0, 0).Format("2006-01-02")

	var txns []domain.Transaction
	err = c.guarded(ctx, func() error {
		txns = txns[:0]
		offset := 0
		for {
			var resp struct {
				Transactions      []feedTransaction `json:"transactions"`
				TotalTransactions int               `json:"total_transactions"`
			}
			payload := map[string]any{
				"access_token": token,
				"start_date":   startDate,
				"end_date":     endDate,
				"options": map[string]any{
					"account_ids": []string{accountID},
					"count":       pageSize,
					"offset":      offset,
				},
			}
			if err := c.post(ctx, "/transactions/get", payload, &resp); err != nil {
				return err
			}

			for _, ft := range resp.Transactions {
				date, err := time.Parse("2006-01-02", ft.Date)
				if err != nil {
					c.logger.Warn("plaid: skipping transaction with bad date",
						zap.String("transaction_id", ft.TransactionID),
						zap.String("date", ft.Date),
					)
					continue
				}
				txns = append(txns, domain.Transaction{
					ID:             ft.TransactionID,
					CardID:         "", // assigned by the sync layer
					Description:    ft.Name,
					Amount:         ft.Amount,
					Date:           date,
					AuthorizedDate: parseDatePtr(ft.AuthorizedDate),
					Pending:        ft.Pending,
				})
			}

			offset += len(resp.Transactions)
			if offset >= resp.TotalTransactions || len(resp.Transactions) == 0 {
				return nil
			}
		}
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "aggregator", Err: err}
	}
	return txns, nil
}

func parseDatePtr(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil
	}
	return &t
}
