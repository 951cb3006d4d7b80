package domain

import (
	"context"

	"github.com/google/uuid"
)

// TenantStore is the tenant record repository. Domain-field writes are
// single-row, last-writer-wins; callers derive each write from a fresh read
// immediately prior.
type TenantStore interface {
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*Tenant, error)

	// SetDomain records a fresh attachment: custom domain, status, and the
	// challenge/record projections in one write.
	SetDomain(ctx context.Context, id uuid.UUID, domain string, status DomainStatus, challenges []VerificationChallenge, records []DNSRecord) error
	// UpdateDomainVerification refreshes the verification projection without
	// touching the attached domain name.
	UpdateDomainVerification(ctx context.Context, id uuid.UUID, status DomainStatus, challenges []VerificationChallenge, records []DNSRecord) error
	SetDomainStatus(ctx context.Context, id uuid.UUID, status DomainStatus) error
	// ClearDomain detaches: nils the domain and resets the projections.
	ClearDomain(ctx context.Context, id uuid.UUID) error
}
