package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/GiacomoGonzales/shopifree-domains/internal/domain"
	"github.com/GiacomoGonzales/shopifree-domains/internal/platform"
	"github.com/GiacomoGonzales/shopifree-domains/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrTenantNotFound   = errors.New("tenant not found")
	ErrPlanRequired     = errors.New("pro plan required for custom domains")
	ErrDomainNotOwned   = errors.New("domain does not belong to this tenant")
	ErrNoDomainAttached = errors.New("no custom domain attached")
)

// wwwRedirectStatusCode is the permanent-redirect code used for the www alias.
const wwwRedirectStatusCode = 308

// DomainService drives the custom-domain lifecycle: it validates input,
// talks to the hosting platform, reconciles DNS records, and persists the
// resulting projection on the tenant. Validation and authorization failures
// short-circuit before any I/O; the primary platform call aborts the whole
// operation on failure, while secondary calls degrade gracefully.
type DomainService struct {
	tenants  domain.TenantStore
	platform domain.PlatformClient
	logger   *zap.Logger
}

func NewDomainService(ts domain.TenantStore, pc domain.PlatformClient, logger *zap.Logger) *DomainService {
	return &DomainService{tenants: ts, platform: pc, logger: logger}
}

// AttachResult is returned to the caller after a successful attachment.
type AttachResult struct {
	Domain     string
	DNSRecords []domain.DNSRecord
	Challenges []domain.VerificationChallenge
}

// VerifyResult reports the outcome of a verification poll.
type VerifyResult struct {
	Verified   bool
	Status     domain.DomainStatus
	DNSRecords []domain.DNSRecord
}

// Attach registers rawDomain for the tenant: plan gate, syntax validation,
// platform registration, best-effort www alias, DNS-record derivation, and
// persistence of the pending_verification projection. No tenant state is
// written if the platform rejects the apex registration.
func (s *DomainService) Attach(ctx context.Context, tenantID uuid.UUID, rawDomain string) (*AttachResult, error) {
	tenant, err := s.getTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.Plan.CanUseCustomDomain() {
		return nil, ErrPlanRequired
	}

	name, err := domain.NormalizeDomainName(rawDomain)
	if err != nil {
		return nil, err
	}

	if tenant.CustomDomain != "" && tenant.CustomDomain != name {
		// Overwrites the previous attachment and leaves it registered at the
		// platform. Whether Attach should reject or auto-detach instead is an
		// open product decision; the log makes occurrences auditable.
		s.logger.Warn("attaching over existing custom domain",
			zap.String("tenant_id", tenantID.String()),
			zap.String("old_domain", tenant.CustomDomain),
			zap.String("new_domain", name))
	}

	attached, err := s.platform.AttachDomain(ctx, name)
	if err != nil {
		return nil, err
	}

	s.tryOptional("attach www alias", name, func() error {
		return s.platform.AttachAliasWithRedirect(ctx, "www."+name, name, wwwRedirectStatusCode)
	})

	// Display-only lookups; the attach itself already succeeded, so either
	// failing leaves us with fallback records rather than an error.
	cfg := s.lookupConfig(ctx, name)
	details := s.lookupDetails(ctx, name)
	records := domain.ReconcileDNSRecords(name, cfg, details)

	if err := s.tenants.SetDomain(ctx, tenantID, name, domain.DomainPendingVerification, attached.Challenges, records); err != nil {
		return nil, fmt.Errorf("persist domain attachment: %w", err)
	}

	return &AttachResult{Domain: name, DNSRecords: records, Challenges: attached.Challenges}, nil
}

// Verify polls the platform for the domain's current state and refreshes the
// tenant's projection. A platform 404 is a normal outcome that persists the
// not_found status; any other failure of the details lookup aborts without
// mutating tenant state.
func (s *DomainService) Verify(ctx context.Context, tenantID uuid.UUID, domainName string) (*VerifyResult, error) {
	tenant, err := s.getTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant.CustomDomain != domainName {
		return nil, ErrDomainNotOwned
	}

	details, err := s.platform.GetDomainDetails(ctx, domainName)
	if err != nil {
		if platform.IsNotFound(err) {
			if uerr := s.tenants.SetDomainStatus(ctx, tenantID, domain.DomainNotFound); uerr != nil {
				return nil, fmt.Errorf("persist not_found status: %w", uerr)
			}
			return &VerifyResult{Verified: false, Status: domain.DomainNotFound}, nil
		}
		return nil, err
	}

	cfg := s.lookupConfig(ctx, domainName)
	records := domain.ReconcileDNSRecords(domainName, cfg, *details)

	// Only an explicit misconfigured=false proves the published DNS matches.
	// Unknown (config lookup failed) counts as not configured.
	configured := cfg.Misconfigured != nil && !*cfg.Misconfigured
	status := domain.DomainPendingVerification
	if configured {
		status = domain.DomainVerified
	}

	if err := s.tenants.UpdateDomainVerification(ctx, tenantID, status, details.Verification, records); err != nil {
		return nil, fmt.Errorf("persist verification state: %w", err)
	}

	return &VerifyResult{Verified: configured, Status: status, DNSRecords: records}, nil
}

// Detach removes the domain from the platform (tolerating already-gone) and
// clears the tenant's domain fields.
func (s *DomainService) Detach(ctx context.Context, tenantID uuid.UUID, domainName string) error {
	tenant, err := s.getTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	if tenant.CustomDomain != domainName {
		return ErrDomainNotOwned
	}

	if err := s.platform.DetachDomain(ctx, domainName); err != nil {
		return err
	}

	s.tryOptional("detach www alias", domainName, func() error {
		return s.platform.DetachDomain(ctx, "www."+domainName)
	})

	if err := s.tenants.ClearDomain(ctx, tenantID); err != nil {
		return fmt.Errorf("persist domain removal: %w", err)
	}
	return nil
}

// Records re-derives the actionable DNS records for the tenant's attached
// domain from a live config lookup, without touching persisted state.
func (s *DomainService) Records(ctx context.Context, tenantID uuid.UUID) ([]domain.DNSRecord, error) {
	tenant, err := s.getTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant.CustomDomain == "" {
		return nil, ErrNoDomainAttached
	}

	cfg, err := s.platform.GetDomainConfig(ctx, tenant.CustomDomain)
	if err != nil {
		return nil, err
	}
	details := s.lookupDetails(ctx, tenant.CustomDomain)
	return domain.ReconcileDNSRecords(tenant.CustomDomain, *cfg, details), nil
}

func (s *DomainService) getTenant(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	tenant, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	return tenant, nil
}

// tryOptional runs a secondary operation whose failure must not affect the
// primary outcome. Failures are logged and swallowed; this is the single
// place deciding which platform calls are non-fatal.
func (s *DomainService) tryOptional(op, domainName string, fn func() error) {
	if err := fn(); err != nil {
		s.logger.Warn("secondary platform operation failed",
			zap.String("op", op),
			zap.String("domain", domainName),
			zap.Error(err))
	}
}

func (s *DomainService) lookupConfig(ctx context.Context, domainName string) domain.DomainConfig {
	var cfg domain.DomainConfig
	s.tryOptional("get domain config", domainName, func() error {
		got, err := s.platform.GetDomainConfig(ctx, domainName)
		if err != nil {
			return err
		}
		cfg = *got
		return nil
	})
	return cfg
}

func (s *DomainService) lookupDetails(ctx context.Context, domainName string) domain.DomainDetails {
	var details domain.DomainDetails
	s.tryOptional("get domain details", domainName, func() error {
		got, err := s.platform.GetDomainDetails(ctx, domainName)
		if err != nil {
			return err
		}
		details = *got
		return nil
	})
	return details
}
