package domain

import "context"

// AttachResult is the platform's response to registering a domain on the
// project. Challenges is non-empty when the platform requires ownership
// proof before routing the domain.
type AttachResult struct {
	Verified   bool                    `json:"verified"`
	Challenges []VerificationChallenge `json:"challenges"`
}

// DomainConfig is the canonical shape of the platform's domain-config
// endpoint. Misconfigured is a tri-state: nil means the state could not be
// determined; only an explicit false means the published DNS matches what
// the platform expects.
type DomainConfig struct {
	ARecords      []string
	CNAMETarget   string
	Misconfigured *bool
}

// DomainDetails is the platform's per-project view of an attached domain.
type DomainDetails struct {
	Verification []VerificationChallenge
}

// PlatformClient is the hosting-platform API consumed by the domain
// lifecycle. Implementations return *platform.Error for upstream rejections
// so callers can inspect the machine code and HTTP status.
type PlatformClient interface {
	AttachDomain(ctx context.Context, domain string) (*AttachResult, error)
	// AttachAliasWithRedirect registers alias redirecting to target. Callers
	// treat failures as non-fatal; the apex is the functionally important
	// half of an attachment.
	AttachAliasWithRedirect(ctx context.Context, alias, target string, redirectCode int) error
	GetDomainConfig(ctx context.Context, domain string) (*DomainConfig, error)
	// GetDomainDetails returns a not-found platform error when the platform
	// no longer has a record of the domain. That is a legitimate outcome,
	// not a crash condition.
	GetDomainDetails(ctx context.Context, domain string) (*DomainDetails, error)
	// DetachDomain succeeds when the domain is already gone.
	DetachDomain(ctx context.Context, domain string) error
}
