package services_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shahrfin/municipal_budget_app/internal/apperrors"
	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
	portsrepo "github.com/shahrfin/municipal_budget_app/internal/core/ports/repositories"
)

// In-memory repositories backing the service tests. They honor the same
// contracts as the pgsql implementations: ledger mutations run one at a time
// under a lock, conditional updates fail when the expected current state has
// moved, and nothing persists when a mutation returns an error.

// --- fakeBudgetRepo ---

type fakeBudgetRepo struct {
	mu      sync.Mutex
	rows    map[string]*domain.BudgetRow
	entries []domain.BudgetTransaction
}

func newFakeBudgetRepo() *fakeBudgetRepo {
	return &fakeBudgetRepo{rows: make(map[string]*domain.BudgetRow)}
}

var _ portsrepo.BudgetRepositoryFacade = (*fakeBudgetRepo)(nil)

func (f *fakeBudgetRepo) addRow(row domain.BudgetRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[row.BudgetRowID] = &row
}

func (f *fakeBudgetRepo) FindBudgetRowByID(_ context.Context, budgetRowID string) (*domain.BudgetRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[budgetRowID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeBudgetRepo) FindBudgetRowByCoding(_ context.Context, budgetCoding string) (*domain.BudgetRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.BudgetCoding == budgetCoding {
			cp := *row
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeBudgetRepo) ListBudgetRows(_ context.Context, orgUnitID *string, fiscalYear int, limit int, offset int) ([]domain.BudgetRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.BudgetRow
	for _, row := range f.rows {
		if row.FiscalYear != fiscalYear {
			continue
		}
		if orgUnitID != nil && row.OrgUnitID != nil && *row.OrgUnitID != *orgUnitID {
			continue
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BudgetCoding < out[j].BudgetCoding })
	return paginate(out, limit, offset), nil
}

func (f *fakeBudgetRepo) ListBudgetTransactions(_ context.Context, budgetRowID string, limit int, offset int) ([]domain.BudgetTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.BudgetTransaction
	for _, e := range f.entries {
		if e.BudgetRowID == budgetRowID {
			out = append(out, e)
		}
	}
	return paginate(out, limit, offset), nil
}

func (f *fakeBudgetRepo) SaveBudgetRow(_ context.Context, row domain.BudgetRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.rows {
		if existing.BudgetCoding == row.BudgetCoding {
			return apperrors.ErrDuplicate
		}
	}
	f.rows[row.BudgetRowID] = &row
	return nil
}

func (f *fakeBudgetRepo) ApplyLedgerMutation(_ context.Context, budgetRowID string, mutate portsrepo.LedgerMutation) (*domain.BudgetTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.applyLocked(budgetRowID, mutate)
}

// applyLocked runs a mutation with f.mu already held, so sibling fakes can
// compose it into their own "transaction".
func (f *fakeBudgetRepo) applyLocked(budgetRowID string, mutate portsrepo.LedgerMutation) (*domain.BudgetTransaction, error) {
	row, ok := f.rows[budgetRowID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *row
	entry, err := mutate(&cp, time.Now())
	if err != nil {
		return nil, err
	}
	*row = cp
	f.entries = append(f.entries, entry)
	return &entry, nil
}

// --- fakeTransactionRepo ---

type fakeTransactionRepo struct {
	mu     sync.Mutex
	budget *fakeBudgetRepo
	txns   map[string]*domain.Transaction
	logs   []domain.WorkflowLog
}

func newFakeTransactionRepo(budget *fakeBudgetRepo) *fakeTransactionRepo {
	return &fakeTransactionRepo{budget: budget, txns: make(map[string]*domain.Transaction)}
}

var _ portsrepo.TransactionRepositoryFacade = (*fakeTransactionRepo)(nil)

func (f *fakeTransactionRepo) addTransaction(txn domain.Transaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txns[txn.TransactionID] = &txn
}

func (f *fakeTransactionRepo) FindTransactionByID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	txn, ok := f.txns[transactionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *txn
	return &cp, nil
}

func (f *fakeTransactionRepo) FindTransactionByUniqueCode(_ context.Context, uniqueCode string) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, txn := range f.txns {
		if txn.UniqueCode == uniqueCode {
			cp := *txn
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeTransactionRepo) ListTransactions(_ context.Context, status *domain.TransactionStatus, limit int, offset int) ([]domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Transaction
	for _, txn := range f.txns {
		if status != nil && txn.Status != *status {
			continue
		}
		out = append(out, *txn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UniqueCode < out[j].UniqueCode })
	return paginate(out, limit, offset), nil
}

func (f *fakeTransactionRepo) ListWorkflowLogs(_ context.Context, transactionID string) ([]domain.WorkflowLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.WorkflowLog
	for _, l := range f.logs {
		if l.TransactionID == transactionID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeTransactionRepo) SaveTransactionWithBlock(_ context.Context, txn domain.Transaction, block portsrepo.LedgerMutation) (*domain.BudgetTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.budget.mu.Lock()
	defer f.budget.mu.Unlock()
	entry, err := f.budget.applyLocked(txn.BudgetRowID, block)
	if err != nil {
		return nil, err
	}
	f.txns[txn.TransactionID] = &txn
	return entry, nil
}

func (f *fakeTransactionRepo) AdvanceStatus(_ context.Context, transactionID string, from, to domain.TransactionStatus, wf domain.WorkflowLog, updatedBy string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	txn, ok := f.txns[transactionID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if txn.Status != from {
		return apperrors.ErrConflict
	}
	txn.Status = to
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = updatedBy
	f.logs = append(f.logs, wf)
	return nil
}

func (f *fakeTransactionRepo) FinalizeApproval(_ context.Context, transactionID string, from domain.TransactionStatus, confirm portsrepo.LedgerMutation, wf domain.WorkflowLog, updatedBy string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	txn, ok := f.txns[transactionID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if txn.Status != from {
		return apperrors.ErrConflict
	}
	f.budget.mu.Lock()
	defer f.budget.mu.Unlock()
	if _, err := f.budget.applyLocked(txn.BudgetRowID, confirm); err != nil {
		return err
	}
	ready := domain.AccountingReadyToPost
	txn.Status = domain.TxnApproved
	txn.AccountingStatus = &ready
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = updatedBy
	f.logs = append(f.logs, wf)
	return nil
}

func (f *fakeTransactionRepo) ResolveWithRelease(_ context.Context, transactionID string, from, to domain.TransactionStatus, release portsrepo.LedgerMutation, wf domain.WorkflowLog, updatedBy string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	txn, ok := f.txns[transactionID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if txn.Status != from {
		return apperrors.ErrConflict
	}
	f.budget.mu.Lock()
	defer f.budget.mu.Unlock()
	if _, err := f.budget.applyLocked(txn.BudgetRowID, release); err != nil {
		return err
	}
	txn.Status = to
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = updatedBy
	f.logs = append(f.logs, wf)
	return nil
}

func (f *fakeTransactionRepo) ResubmitWithBlock(_ context.Context, transactionID string, from, to domain.TransactionStatus, block portsrepo.LedgerMutation, wf domain.WorkflowLog, updatedBy string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	txn, ok := f.txns[transactionID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if txn.Status != from {
		return apperrors.ErrConflict
	}
	f.budget.mu.Lock()
	defer f.budget.mu.Unlock()
	if _, err := f.budget.applyLocked(txn.BudgetRowID, block); err != nil {
		return err
	}
	txn.Status = to
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = updatedBy
	f.logs = append(f.logs, wf)
	return nil
}

func (f *fakeTransactionRepo) MarkTransactionPosted(_ context.Context, transactionID string, expectedVersion int64, postingRef string, notes string, postedBy string, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	txn, ok := f.txns[transactionID]
	if !ok {
		return false, apperrors.ErrNotFound
	}
	if txn.Version != expectedVersion {
		return false, nil
	}
	if txn.Status != domain.TxnApproved {
		return false, nil
	}
	if txn.AccountingStatus != nil && *txn.AccountingStatus != domain.AccountingReadyToPost {
		return false, nil
	}
	posted := domain.AccountingPosted
	txn.AccountingStatus = &posted
	txn.PostingRef = &postingRef
	txn.PostingNotes = &notes
	txn.PostedAt = &now
	txn.Version++
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = postedBy
	return true, nil
}

// --- fakeContractRepo (contracts and statements share one lock) ---

type fakeContractRepo struct {
	mu         sync.Mutex
	budget     *fakeBudgetRepo
	contracts  map[string]*domain.Contract
	statements map[string]*domain.ProgressStatement
}

func newFakeContractRepo(budget *fakeBudgetRepo) *fakeContractRepo {
	return &fakeContractRepo{
		budget:     budget,
		contracts:  make(map[string]*domain.Contract),
		statements: make(map[string]*domain.ProgressStatement),
	}
}

var (
	_ portsrepo.ContractRepositoryFacade  = (*fakeContractRepo)(nil)
	_ portsrepo.StatementRepositoryFacade = (*fakeContractRepo)(nil)
)

func (f *fakeContractRepo) FindContractByID(_ context.Context, contractID string) (*domain.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contracts[contractID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeContractRepo) FindContractByNumber(_ context.Context, contractNumber string) (*domain.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.contracts {
		if c.ContractNumber == contractNumber {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeContractRepo) ListContracts(_ context.Context, limit int, offset int) ([]domain.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Contract
	for _, c := range f.contracts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContractNumber < out[j].ContractNumber })
	return paginate(out, limit, offset), nil
}

func (f *fakeContractRepo) SaveContractWithBlock(_ context.Context, contract domain.Contract, block portsrepo.LedgerMutation) (*domain.BudgetTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.budget.mu.Lock()
	defer f.budget.mu.Unlock()
	entry, err := f.budget.applyLocked(contract.BudgetRowID, block)
	if err != nil {
		return nil, err
	}
	f.contracts[contract.ContractID] = &contract
	return entry, nil
}

func (f *fakeContractRepo) UpdateContractStatus(_ context.Context, contractID string, from, to domain.ContractStatus, updatedBy string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contracts[contractID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if c.Status != from {
		return apperrors.ErrConflict
	}
	c.Status = to
	c.LastUpdatedAt = now
	c.LastUpdatedBy = updatedBy
	return nil
}

func (f *fakeContractRepo) RejectContractWithRelease(_ context.Context, contractID string, from domain.ContractStatus, release portsrepo.LedgerMutation, updatedBy string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contracts[contractID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if c.Status != from {
		return apperrors.ErrConflict
	}
	f.budget.mu.Lock()
	defer f.budget.mu.Unlock()
	if _, err := f.budget.applyLocked(c.BudgetRowID, release); err != nil {
		return err
	}
	c.Status = domain.ContractRejected
	c.LastUpdatedAt = now
	c.LastUpdatedBy = updatedBy
	return nil
}

func (f *fakeContractRepo) FindStatementByID(_ context.Context, statementID string) (*domain.ProgressStatement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.statements[statementID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (f *fakeContractRepo) ListStatementsByContract(_ context.Context, contractID string) ([]domain.ProgressStatement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ProgressStatement
	for _, st := range f.statements {
		if st.ContractID == contractID {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (f *fakeContractRepo) SaveStatement(_ context.Context, statement domain.ProgressStatement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statements[statement.StatementID] = &statement
	return nil
}

func (f *fakeContractRepo) UpdateStatementStatus(_ context.Context, statementID string, from, to domain.StatementStatus, updatedBy string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.statements[statementID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if st.Status != from {
		return apperrors.ErrConflict
	}
	st.Status = to
	st.LastUpdatedAt = now
	st.LastUpdatedBy = updatedBy
	return nil
}

func (f *fakeContractRepo) PayStatementWithSpend(_ context.Context, statementID string, from domain.StatementStatus, confirm portsrepo.LedgerMutation, updatedBy string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.statements[statementID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if st.Status != from {
		return apperrors.ErrConflict
	}
	c, ok := f.contracts[st.ContractID]
	if !ok {
		return apperrors.ErrNotFound
	}
	f.budget.mu.Lock()
	defer f.budget.mu.Unlock()
	if _, err := f.budget.applyLocked(c.BudgetRowID, confirm); err != nil {
		return err
	}
	st.Status = domain.StatementPaid
	st.LastUpdatedAt = now
	st.LastUpdatedBy = updatedBy
	c.PaidAmount = c.PaidAmount.Add(st.NetAmount)
	if c.PaidAmount.Equal(c.TotalAmount) {
		c.Status = domain.ContractCompleted
	} else {
		c.Status = domain.ContractInProgress
	}
	c.LastUpdatedAt = now
	c.LastUpdatedBy = updatedBy
	return nil
}

// --- fakeJournalRepo ---

type fakeJournalRepo struct {
	mu        sync.Mutex
	snapshots map[string]*domain.JournalSnapshot
}

func newFakeJournalRepo() *fakeJournalRepo {
	return &fakeJournalRepo{snapshots: make(map[string]*domain.JournalSnapshot)}
}

var _ portsrepo.JournalRepositoryFacade = (*fakeJournalRepo)(nil)

func (f *fakeJournalRepo) FindSnapshotByTransactionID(_ context.Context, transactionID string) (*domain.JournalSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, ok := f.snapshots[transactionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *snap
	return &cp, nil
}

func (f *fakeJournalRepo) SaveSnapshot(_ context.Context, snapshot domain.JournalSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.snapshots[snapshot.TransactionID]; ok {
		return apperrors.ErrDuplicate
	}
	f.snapshots[snapshot.TransactionID] = &snapshot
	return nil
}

// --- fakeUserRepo ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

var _ portsrepo.UserRepositoryFacade = (*fakeUserRepo)(nil)

func (f *fakeUserRepo) SaveUser(_ context.Context, user domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.UserID] = &user
	return nil
}

func (f *fakeUserRepo) FindUserByID(_ context.Context, userID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) FindUserByUsername(_ context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserRepo) ListUsers(_ context.Context, limit int, offset int) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return paginate(out, limit, offset), nil
}

// --- fakeSessionStore ---

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]string)}
}

var _ portsrepo.SessionStore = (*fakeSessionStore)(nil)

func (f *fakeSessionStore) PutSession(_ context.Context, sessionID, userID string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[sessionID] = userID
	return nil
}

func (f *fakeSessionStore) GetSession(_ context.Context, sessionID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	userID, ok := f.sessions[sessionID]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return userID, nil
}

func (f *fakeSessionStore) DeleteSession(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sessionID)
	return nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
