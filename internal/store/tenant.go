package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/GiacomoGonzales/shopifree-domains/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

const tenantColumns = `id, name, api_key_hash, plan, custom_domain, domain_status,
	 domain_verification, domain_dns_records, created_at, updated_at`

type TenantStore struct {
	db *pgxpool.Pool
}

func NewTenantStore(db *pgxpool.Pool) *TenantStore {
	return &TenantStore{db: db}
}

func (s *TenantStore) Create(ctx context.Context, t *domain.Tenant) error {
	if t.Plan == "" {
		t.Plan = domain.PlanFree
	}
	t.DomainStatus = domain.DomainUnattached
	err := s.db.QueryRow(ctx,
		`INSERT INTO tenants (name, api_key_hash, plan, domain_status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		t.Name, t.APIKeyHash, t.Plan, t.DomainStatus,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *TenantStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
	return scanTenant(row)
}

func (s *TenantStore) GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*domain.Tenant, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE api_key_hash = $1`, apiKeyHash)
	return scanTenant(row)
}

func (s *TenantStore) SetDomain(ctx context.Context, id uuid.UUID, domainName string, status domain.DomainStatus, challenges []domain.VerificationChallenge, records []domain.DNSRecord) error {
	verification, dnsRecords, err := marshalDomainFields(challenges, records)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE tenants
		 SET custom_domain = $2, domain_status = $3, domain_verification = $4,
		     domain_dns_records = $5, updated_at = NOW()
		 WHERE id = $1`,
		id, domainName, status, verification, dnsRecords)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *TenantStore) UpdateDomainVerification(ctx context.Context, id uuid.UUID, status domain.DomainStatus, challenges []domain.VerificationChallenge, records []domain.DNSRecord) error {
	verification, dnsRecords, err := marshalDomainFields(challenges, records)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE tenants
		 SET domain_status = $2, domain_verification = $3,
		     domain_dns_records = $4, updated_at = NOW()
		 WHERE id = $1`,
		id, status, verification, dnsRecords)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *TenantStore) SetDomainStatus(ctx context.Context, id uuid.UUID, status domain.DomainStatus) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE tenants SET domain_status = $2, updated_at = NOW() WHERE id = $1`,
		id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *TenantStore) ClearDomain(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE tenants
		 SET custom_domain = NULL, domain_status = $2, domain_verification = NULL,
		     domain_dns_records = NULL, updated_at = NOW()
		 WHERE id = $1`,
		id, domain.DomainUnattached)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTenant(row pgx.Row) (*domain.Tenant, error) {
	t := &domain.Tenant{}
	var customDomain *string
	var verification, dnsRecords []byte

	err := row.Scan(&t.ID, &t.Name, &t.APIKeyHash, &t.Plan, &customDomain, &t.DomainStatus,
		&verification, &dnsRecords, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if customDomain != nil {
		t.CustomDomain = *customDomain
	}
	if len(verification) > 0 {
		if err := json.Unmarshal(verification, &t.DomainVerification); err != nil {
			return nil, fmt.Errorf("decode domain_verification: %w", err)
		}
	}
	if len(dnsRecords) > 0 {
		if err := json.Unmarshal(dnsRecords, &t.DomainDNSRecords); err != nil {
			return nil, fmt.Errorf("decode domain_dns_records: %w", err)
		}
	}
	return t, nil
}

func marshalDomainFields(challenges []domain.VerificationChallenge, records []domain.DNSRecord) ([]byte, []byte, error) {
	verification, err := json.Marshal(challenges)
	if err != nil {
		return nil, nil, fmt.Errorf("encode domain_verification: %w", err)
	}
	dnsRecords, err := json.Marshal(records)
	if err != nil {
		return nil, nil, fmt.Errorf("encode domain_dns_records: %w", err)
	}
	return verification, dnsRecords, nil
}
