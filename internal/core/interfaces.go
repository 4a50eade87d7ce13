package core

import (
	"context"
	"time"

	"github.com/tophhie/pds-welcomer/internal/domain/model"
)

// This file contains the port definitions (hexagonal architecture) the dispatch
// service depends on. Adapters under internal/adapters and internal/data implement them.

// AccountLister enumerates the accounts hosted on the directory.
type AccountLister interface {
	ListAccounts(ctx context.Context) (*model.AccountListing, error)
}

// IdentityResolver turns an account DID into its contact identity using the admin credential.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, did, adminPassword string) (*model.ContactIdentity, error)
}

// EmailSendRequest groups the parameters for EmailSender.Send.
type EmailSendRequest struct {
	To   string
	HTML string
	// AccessKey is the base64 signing secret for this run.
	AccessKey string
}

// EmailSender delivers one rendered message through the email provider.
type EmailSender interface {
	Send(ctx context.Context, req EmailSendRequest) error
}

// DispatchRecordRepository persists one DispatchRecord per account DID.
// Get returns (nil, nil) when no record exists.
type DispatchRecordRepository interface {
	Get(ctx context.Context, did string) (*model.DispatchRecord, error)
	Put(ctx context.Context, did string, record model.DispatchRecord) error
}

// DispatchRecordAdmin exposes the operator-only record operations used by the admin CLI.
type DispatchRecordAdmin interface {
	DispatchRecordRepository
	List(ctx context.Context, opts model.DispatchRecordListOptions) ([]model.DispatchRecordEntry, error)
	Delete(ctx context.Context, did string) (bool, error)
}

// SecretProvider fetches a named secret. Values are read on every call and never cached.
type SecretProvider interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Clock abstracts the wall clock for signing timestamps and record times.
type Clock interface {
	Now() time.Time
}
