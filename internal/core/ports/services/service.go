package services

// ServiceContainer bundles the service facades for handler registration.
type ServiceContainer struct {
	BudgetSvc    BudgetSvcFacade
	ApprovalSvc  ApprovalSvcFacade
	ContractSvc  ContractSvcFacade
	StatementSvc StatementSvcFacade
	PostingSvc   PostingSvcFacade
	UserSvc      UserSvcFacade
	AuthSvc      AuthSvcFacade
}
