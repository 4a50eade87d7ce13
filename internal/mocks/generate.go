// Package mocks provides mock implementations of the internal/core ports used by the
// welcome dispatch service.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	lister := mocks.NewMockAccountLister(ctrl)
//	lister.EXPECT().ListAccounts(gomock.Any()).Return(listing, nil)
package mocks

// Generate mock for AccountLister interface from internal/core package.
// This creates MockAccountLister with methods for all AccountLister interface methods:
// ListAccounts
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=account_lister_mock.go github.com/tophhie/pds-welcomer/internal/core AccountLister

// Generate mock for IdentityResolver interface from internal/core package.
// This creates MockIdentityResolver with methods for all IdentityResolver interface methods:
// ResolveIdentity
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=identity_resolver_mock.go github.com/tophhie/pds-welcomer/internal/core IdentityResolver

// Generate mock for EmailSender interface from internal/core package.
// This creates MockEmailSender with methods for all EmailSender interface methods:
// Send
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=email_sender_mock.go github.com/tophhie/pds-welcomer/internal/core EmailSender

// Generate mock for DispatchRecordRepository interface from internal/core package.
// This creates MockDispatchRecordRepository with methods for all DispatchRecordRepository interface methods:
// Get, Put
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=dispatch_record_repository_mock.go github.com/tophhie/pds-welcomer/internal/core DispatchRecordRepository

// Generate mock for SecretProvider interface from internal/core package.
// This creates MockSecretProvider with methods for all SecretProvider interface methods:
// GetSecret
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=secret_provider_mock.go github.com/tophhie/pds-welcomer/internal/core SecretProvider
