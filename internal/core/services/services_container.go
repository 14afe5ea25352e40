package services

import (
	portsrepo "github.com/stiftly/foundation_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/stiftly/foundation_ledger_app/internal/core/ports/services"
	"github.com/stiftly/foundation_ledger_app/internal/platform/config"
)

// NewServiceContainer wires up all the application services over the given
// repositories. The foundation service authorizes every other service's
// operations, and in turn triggers the chart bootstrap owned by the account
// service, so those two are wired to each other after construction.
func NewServiceContainer(cfg *config.Config, repos *portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	foundationSvc := NewFoundationService(repos.FoundationRepo)
	accountSvc := NewAccountService(repos.AccountRepo, repos.FoundationRepo, foundationSvc)
	foundationSvc.AttachChartBootstrap(accountSvc)

	entrySvc := NewEntryService(repos.EntryRepo, accountSvc, foundationSvc)
	userSvc := NewUserService(repos.UserRepo)
	tokenSvc := NewTokenService(cfg, userSvc)

	return &portssvc.ServiceContainer{
		Account:    accountSvc,
		Entry:      entrySvc,
		Foundation: foundationSvc,
		User:       userSvc,
		Token:      tokenSvc,
	}
}
