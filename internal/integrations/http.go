package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/shahrfin/municipal_budget_app/internal/apperrors"
)

// httpCreditLookup talks to the provincial credit service. Transient
// failures are retried with exponential backoff; a 404 is final.
type httpCreditLookup struct {
	baseURL string
	client  *http.Client
}

// NewHTTPCreditLookup creates the live credit-lookup client.
func NewHTTPCreditLookup(baseURL string, timeout time.Duration) *httpCreditLookup {
	return &httpCreditLookup{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

var _ CreditLookup = (*httpCreditLookup)(nil)

func (c *httpCreditLookup) LookupCredit(ctx context.Context, budgetCoding string, fiscalYear int) (*CreditStanding, error) {
	endpoint := fmt.Sprintf("%s/api/credits/%s?fiscalYear=%d", c.baseURL, url.PathEscape(budgetCoding), fiscalYear)
	var standing CreditStanding
	if err := c.getJSON(ctx, endpoint, &standing); err != nil {
		return nil, err
	}
	return &standing, nil
}

func (c *httpCreditLookup) getJSON(ctx context.Context, endpoint string, out any) error {
	return getJSONWithRetry(ctx, c.client, endpoint, out)
}

// httpContractorRegistry talks to the municipal contractor registry.
type httpContractorRegistry struct {
	baseURL string
	client  *http.Client
}

// NewHTTPContractorRegistry creates the live contractor-registry client.
func NewHTTPContractorRegistry(baseURL string, timeout time.Duration) *httpContractorRegistry {
	return &httpContractorRegistry{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

var _ ContractorRegistry = (*httpContractorRegistry)(nil)

func (c *httpContractorRegistry) LookupContractor(ctx context.Context, contractorID string) (*Contractor, error) {
	endpoint := fmt.Sprintf("%s/api/contractors/%s", c.baseURL, url.PathEscape(contractorID))
	var contractor Contractor
	if err := getJSONWithRetry(ctx, c.client, endpoint, &contractor); err != nil {
		return nil, err
	}
	return &contractor, nil
}

// getJSONWithRetry fetches endpoint into out, retrying 5xx and transport
// errors with exponential backoff until the context expires. 4xx responses
// are permanent.
func getJSONWithRetry(ctx context.Context, client *http.Client, endpoint string, out any) error {
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(apperrors.ErrNotFound)
		case resp.StatusCode >= 500:
			return fmt.Errorf("upstream returned %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("upstream returned %d", resp.StatusCode))
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decoding upstream response: %w", err))
		}
		return nil
	}

	policy := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	return backoff.Retry(operation, backoff.WithMaxRetries(policy, 3))
}
