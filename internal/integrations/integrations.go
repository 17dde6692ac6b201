// Package integrations holds the clients for external municipal systems:
// the provincial credit-lookup service and the contractor registry. Both are
// reached over HTTP in production and replaced by static mocks in
// development, selected by configuration.
package integrations

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/shahrfin/municipal_budget_app/internal/platform/config"
)

// CreditStanding is the upstream view of one budget line's approved credit.
type CreditStanding struct {
	BudgetCoding   string          `json:"budgetCoding"`
	ApprovedCredit decimal.Decimal `json:"approvedCredit"`
	FiscalYear     int             `json:"fiscalYear"`
}

// Contractor is the registry record of a contracting party.
type Contractor struct {
	ContractorID string `json:"contractorID"`
	Name         string `json:"name"`
	Eligible     bool   `json:"eligible"`
}

// CreditLookup queries the provincial finance system for the approved credit
// behind a budget coding.
type CreditLookup interface {
	LookupCredit(ctx context.Context, budgetCoding string, fiscalYear int) (*CreditStanding, error)
}

// ContractorRegistry queries the municipal contractor registry.
type ContractorRegistry interface {
	LookupContractor(ctx context.Context, contractorID string) (*Contractor, error)
}

// Clients bundles the external integration clients.
type Clients struct {
	Credit      CreditLookup
	Contractors ContractorRegistry
}

// NewClients builds the integration clients for the configured mode. Any
// mode other than "live" yields mocks that accept everything, so development
// environments work without the upstream systems.
func NewClients(cfg *config.Config) Clients {
	if cfg.IntegrationsMode == "live" {
		return Clients{
			Credit:      NewHTTPCreditLookup(cfg.CreditLookupBaseURL, cfg.IntegrationsHTTPTimeout),
			Contractors: NewHTTPContractorRegistry(cfg.ContractorRegistryURL, cfg.IntegrationsHTTPTimeout),
		}
	}
	return Clients{
		Credit:      NewMockCreditLookup(),
		Contractors: NewMockContractorRegistry(),
	}
}
