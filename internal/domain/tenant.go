package domain

import (
	"time"

	"github.com/google/uuid"
)

// PlanTier is a tenant's subscription tier.
type PlanTier string

const (
	PlanFree     PlanTier = "free"
	PlanPro      PlanTier = "pro"
	PlanBusiness PlanTier = "business"
)

// ValidPlanTier reports whether s names a known plan tier.
func ValidPlanTier(s string) bool {
	switch PlanTier(s) {
	case PlanFree, PlanPro, PlanBusiness:
		return true
	}
	return false
}

// CanUseCustomDomain reports whether the tier includes custom domains.
func (p PlanTier) CanUseCustomDomain() bool {
	return p == PlanPro || p == PlanBusiness
}

// DomainStatus is the cached projection of a custom domain's state at the
// hosting platform. Transitions happen only on explicit Attach/Verify/Detach
// calls; the platform never pushes state into this system.
type DomainStatus string

const (
	DomainUnattached          DomainStatus = "unattached"
	DomainPendingVerification DomainStatus = "pending_verification"
	DomainVerified            DomainStatus = "verified"
	DomainNotFound            DomainStatus = "not_found"
)

// DNSRecord is a record the tenant must publish, with a zone-relative name:
// "@" for the apex, "www" for the alias, or a verification label.
type DNSRecord struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// VerificationChallenge is an ownership challenge as reported by the
// platform. Domain is fully qualified (e.g. "_verify.example.com").
type VerificationChallenge struct {
	Type   string `json:"type"`
	Domain string `json:"domain"`
	Value  string `json:"value"`
}

// Tenant is a store on the platform. CustomDomain is non-empty iff
// DomainStatus != unattached; at most one custom domain per tenant.
type Tenant struct {
	ID                 uuid.UUID               `json:"id"`
	Name               string                  `json:"name"`
	APIKeyHash         string                  `json:"-"`
	Plan               PlanTier                `json:"plan"`
	CustomDomain       string                  `json:"custom_domain,omitempty"`
	DomainStatus       DomainStatus            `json:"domain_status"`
	DomainVerification []VerificationChallenge `json:"domain_verification,omitempty"`
	DomainDNSRecords   []DNSRecord             `json:"domain_dns_records,omitempty"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
}
