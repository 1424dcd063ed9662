package commands

import (
	"github.com/AntonStoeckl/library-loans-go/features/identity"
	"github.com/AntonStoeckl/library-loans-go/features/inventory"
	"github.com/AntonStoeckl/library-loans-go/features/loans"
	"github.com/AntonStoeckl/library-loans-go/features/reports"
	"github.com/AntonStoeckl/library-loans-go/lending/credential"
	"github.com/AntonStoeckl/library-loans-go/transport/httpapi"
)

func buildServices() (httpapi.Services, error) {
	hasher, err := credential.NewBcryptHasher(credential.WithCost(cfg.Credential.BcryptCost))
	if err != nil {
		return httpapi.Services{}, err
	}

	identityService, err := identity.NewService(store, hasher, identity.WithObservability(observability))
	if err != nil {
		return httpapi.Services{}, err
	}

	inventoryService, err := inventory.NewService(store, inventory.WithObservability(observability))
	if err != nil {
		return httpapi.Services{}, err
	}

	loansOptions := []loans.Option{
		loans.WithHorizonYears(cfg.Loans.HorizonYears),
		loans.WithMaxOpenLoans(cfg.Loans.MaxOpenLoans),
		loans.WithLogger(observability.Logger),
		loans.WithContextualLogger(observability.ContextualLogger),
	}
	if observability.Metrics != nil {
		loansOptions = append(loansOptions, loans.WithMetrics(observability.Metrics))
	}
	if observability.Tracing != nil {
		loansOptions = append(loansOptions, loans.WithTracing(observability.Tracing))
	}

	loansService, err := loans.NewService(store, loansOptions...)
	if err != nil {
		return httpapi.Services{}, err
	}

	reportsService, err := reports.NewService(store, reports.WithObservability(observability))
	if err != nil {
		return httpapi.Services{}, err
	}

	return httpapi.Services{
		Identity:  identityService,
		Inventory: inventoryService,
		Loans:     loansService,
		Reports:   reportsService,
	}, nil
}
