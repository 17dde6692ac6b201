package integrations

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// mockCreditLookup reports unbounded credit for every coding. Entries can be
// pinned with SetCredit for tests.
type mockCreditLookup struct {
	mu      sync.RWMutex
	credits map[string]decimal.Decimal
}

// NewMockCreditLookup creates a credit lookup that approves everything.
func NewMockCreditLookup() *mockCreditLookup {
	return &mockCreditLookup{credits: make(map[string]decimal.Decimal)}
}

var _ CreditLookup = (*mockCreditLookup)(nil)

// SetCredit pins the approved credit returned for a coding.
func (m *mockCreditLookup) SetCredit(budgetCoding string, credit decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credits[budgetCoding] = credit
}

func (m *mockCreditLookup) LookupCredit(_ context.Context, budgetCoding string, fiscalYear int) (*CreditStanding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	credit, ok := m.credits[budgetCoding]
	if !ok {
		// Unknown codings get an effectively unlimited ceiling so the mock
		// never blocks a flow the real system would allow.
		credit = decimal.New(1, 15)
	}
	return &CreditStanding{
		BudgetCoding:   budgetCoding,
		ApprovedCredit: credit,
		FiscalYear:     fiscalYear,
	}, nil
}

// mockContractorRegistry marks every contractor eligible unless explicitly
// barred with SetEligible.
type mockContractorRegistry struct {
	mu     sync.RWMutex
	barred map[string]bool
}

// NewMockContractorRegistry creates a registry that accepts every contractor.
func NewMockContractorRegistry() *mockContractorRegistry {
	return &mockContractorRegistry{barred: make(map[string]bool)}
}

var _ ContractorRegistry = (*mockContractorRegistry)(nil)

// SetEligible overrides a contractor's eligibility.
func (m *mockContractorRegistry) SetEligible(contractorID string, eligible bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.barred[contractorID] = !eligible
}

func (m *mockContractorRegistry) LookupContractor(_ context.Context, contractorID string) (*Contractor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &Contractor{
		ContractorID: contractorID,
		Name:         "contractor " + contractorID,
		Eligible:     !m.barred[contractorID],
	}, nil
}
