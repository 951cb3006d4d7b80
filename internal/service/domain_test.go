package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/GiacomoGonzales/shopifree-domains/internal/domain"
	"github.com/GiacomoGonzales/shopifree-domains/internal/platform"
	"github.com/GiacomoGonzales/shopifree-domains/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// mockTenantStore implements domain.TenantStore for testing, counting writes
// so tests can assert that failed operations never persist anything.
type mockTenantStore struct {
	tenants    map[uuid.UUID]*domain.Tenant
	writeCount int
}

func newMockTenantStore(tenants ...*domain.Tenant) *mockTenantStore {
	m := &mockTenantStore{tenants: make(map[uuid.UUID]*domain.Tenant)}
	for _, t := range tenants {
		m.tenants[t.ID] = t
	}
	return m
}

func (m *mockTenantStore) Create(ctx context.Context, t *domain.Tenant) error {
	t.ID = uuid.New()
	m.tenants[t.ID] = t
	return nil
}

func (m *mockTenantStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	t, ok := m.tenants[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return t, nil
}

func (m *mockTenantStore) GetByAPIKeyHash(ctx context.Context, hash string) (*domain.Tenant, error) {
	for _, t := range m.tenants {
		if t.APIKeyHash == hash {
			return t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockTenantStore) SetDomain(ctx context.Context, id uuid.UUID, domainName string, status domain.DomainStatus, challenges []domain.VerificationChallenge, records []domain.DNSRecord) error {
	t, ok := m.tenants[id]
	if !ok {
		return store.ErrNotFound
	}
	m.writeCount++
	t.CustomDomain = domainName
	t.DomainStatus = status
	t.DomainVerification = challenges
	t.DomainDNSRecords = records
	return nil
}

func (m *mockTenantStore) UpdateDomainVerification(ctx context.Context, id uuid.UUID, status domain.DomainStatus, challenges []domain.VerificationChallenge, records []domain.DNSRecord) error {
	t, ok := m.tenants[id]
	if !ok {
		return store.ErrNotFound
	}
	m.writeCount++
	t.DomainStatus = status
	t.DomainVerification = challenges
	t.DomainDNSRecords = records
	return nil
}

func (m *mockTenantStore) SetDomainStatus(ctx context.Context, id uuid.UUID, status domain.DomainStatus) error {
	t, ok := m.tenants[id]
	if !ok {
		return store.ErrNotFound
	}
	m.writeCount++
	t.DomainStatus = status
	return nil
}

func (m *mockTenantStore) ClearDomain(ctx context.Context, id uuid.UUID) error {
	t, ok := m.tenants[id]
	if !ok {
		return store.ErrNotFound
	}
	m.writeCount++
	t.CustomDomain = ""
	t.DomainStatus = domain.DomainUnattached
	t.DomainVerification = nil
	t.DomainDNSRecords = nil
	return nil
}

// mockPlatformClient implements domain.PlatformClient with per-operation
// call counters and injectable results.
type mockPlatformClient struct {
	attachCalls  int
	aliasCalls   int
	configCalls  int
	detailsCalls int
	detachCalls  int

	attachResult *domain.AttachResult
	attachErr    error
	aliasErr     error
	config       *domain.DomainConfig
	configErr    error
	details      *domain.DomainDetails
	detailsErr   error
	detachErr    error

	detached []string
}

func (m *mockPlatformClient) AttachDomain(ctx context.Context, d string) (*domain.AttachResult, error) {
	m.attachCalls++
	if m.attachErr != nil {
		return nil, m.attachErr
	}
	if m.attachResult != nil {
		return m.attachResult, nil
	}
	return &domain.AttachResult{}, nil
}

func (m *mockPlatformClient) AttachAliasWithRedirect(ctx context.Context, alias, target string, code int) error {
	m.aliasCalls++
	return m.aliasErr
}

func (m *mockPlatformClient) GetDomainConfig(ctx context.Context, d string) (*domain.DomainConfig, error) {
	m.configCalls++
	if m.configErr != nil {
		return nil, m.configErr
	}
	if m.config != nil {
		return m.config, nil
	}
	return &domain.DomainConfig{}, nil
}

func (m *mockPlatformClient) GetDomainDetails(ctx context.Context, d string) (*domain.DomainDetails, error) {
	m.detailsCalls++
	if m.detailsErr != nil {
		return nil, m.detailsErr
	}
	if m.details != nil {
		return m.details, nil
	}
	return &domain.DomainDetails{}, nil
}

func (m *mockPlatformClient) DetachDomain(ctx context.Context, d string) error {
	m.detachCalls++
	m.detached = append(m.detached, d)
	return m.detachErr
}

func proTenant() *domain.Tenant {
	return &domain.Tenant{ID: uuid.New(), Name: "Shop", Plan: domain.PlanPro, DomainStatus: domain.DomainUnattached}
}

func newTestService(ts domain.TenantStore, pc domain.PlatformClient) *DomainService {
	return NewDomainService(ts, pc, zap.NewNop())
}

func boolPtr(b bool) *bool { return &b }

func TestDomainService_Attach(t *testing.T) {
	tenant := proTenant()
	ts := newMockTenantStore(tenant)
	pc := &mockPlatformClient{
		attachResult: &domain.AttachResult{
			Challenges: []domain.VerificationChallenge{
				{Type: "TXT", Domain: "_verify.shop.example.com", Value: "tok"},
			},
		},
	}
	svc := newTestService(ts, pc)

	result, err := svc.Attach(context.Background(), tenant.ID, "Shop.Example.com  ")
	assert.NoError(t, err)
	assert.Equal(t, "shop.example.com", result.Domain)
	assert.NotEmpty(t, result.DNSRecords)
	assert.Len(t, result.Challenges, 1)

	assert.Equal(t, 1, pc.attachCalls)
	assert.Equal(t, 1, pc.aliasCalls)
	assert.Equal(t, "shop.example.com", tenant.CustomDomain)
	assert.Equal(t, domain.DomainPendingVerification, tenant.DomainStatus)
}

func TestDomainService_Attach_PlanRequired(t *testing.T) {
	tenant := proTenant()
	tenant.Plan = domain.PlanFree
	ts := newMockTenantStore(tenant)
	pc := &mockPlatformClient{}
	svc := newTestService(ts, pc)

	_, err := svc.Attach(context.Background(), tenant.ID, "shop.example.com")
	assert.ErrorIs(t, err, ErrPlanRequired)
	assert.Equal(t, 0, pc.attachCalls, "authorization failures must not reach the platform")
	assert.Equal(t, 0, ts.writeCount)
}

func TestDomainService_Attach_InvalidDomain(t *testing.T) {
	tenant := proTenant()
	ts := newMockTenantStore(tenant)
	pc := &mockPlatformClient{}
	svc := newTestService(ts, pc)

	_, err := svc.Attach(context.Background(), tenant.ID, "not a domain")
	assert.ErrorIs(t, err, domain.ErrInvalidDomainName)
	assert.Equal(t, 0, pc.attachCalls)
	assert.Equal(t, 0, ts.writeCount)
}

func TestDomainService_Attach_TenantNotFound(t *testing.T) {
	svc := newTestService(newMockTenantStore(), &mockPlatformClient{})

	_, err := svc.Attach(context.Background(), uuid.New(), "shop.example.com")
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestDomainService_Attach_PlatformRejects(t *testing.T) {
	tenant := proTenant()
	ts := newMockTenantStore(tenant)
	pc := &mockPlatformClient{
		attachErr: &platform.Error{Code: platform.CodeDomainAlreadyInUse, Message: "in use", StatusCode: http.StatusConflict},
	}
	svc := newTestService(ts, pc)

	_, err := svc.Attach(context.Background(), tenant.ID, "shop.example.com")
	assert.Error(t, err)
	assert.Equal(t, platform.CodeDomainAlreadyInUse, platform.ErrorCode(err), "machine code preserved")
	assert.Equal(t, 0, ts.writeCount, "no tenant mutation on platform rejection")
	assert.Empty(t, tenant.CustomDomain)
}

func TestDomainService_Attach_AliasFailureIsNonFatal(t *testing.T) {
	tenant := proTenant()
	ts := newMockTenantStore(tenant)
	pc := &mockPlatformClient{aliasErr: errors.New("alias exploded")}
	svc := newTestService(ts, pc)

	result, err := svc.Attach(context.Background(), tenant.ID, "shop.example.com")
	assert.NoError(t, err)
	assert.Equal(t, "shop.example.com", result.Domain)
	assert.Equal(t, domain.DomainPendingVerification, tenant.DomainStatus)
}

func TestDomainService_Attach_LookupFailuresFallBackToDefaults(t *testing.T) {
	tenant := proTenant()
	ts := newMockTenantStore(tenant)
	pc := &mockPlatformClient{
		configErr:  errors.New("config unavailable"),
		detailsErr: errors.New("details unavailable"),
	}
	svc := newTestService(ts, pc)

	result, err := svc.Attach(context.Background(), tenant.ID, "shop.example.com")
	assert.NoError(t, err)
	assert.Equal(t, domain.DNSRecord{Type: "A", Name: "@", Value: domain.DefaultARecordValue}, result.DNSRecords[0])
	assert.Equal(t, domain.DNSRecord{Type: "CNAME", Name: "www", Value: domain.DefaultCNAMETarget}, result.DNSRecords[1])
}

func attachedTenant(domainName string) *domain.Tenant {
	t := proTenant()
	t.CustomDomain = domainName
	t.DomainStatus = domain.DomainPendingVerification
	return t
}

func TestDomainService_Verify_NotOwned(t *testing.T) {
	tenant := attachedTenant("shop.example.com")
	ts := newMockTenantStore(tenant)
	pc := &mockPlatformClient{}
	svc := newTestService(ts, pc)

	_, err := svc.Verify(context.Background(), tenant.ID, "other.example.com")
	assert.ErrorIs(t, err, ErrDomainNotOwned)
	assert.Equal(t, 0, pc.detailsCalls, "ownership failures must not reach the platform")
	assert.Equal(t, 0, ts.writeCount)
}

func TestDomainService_Verify_PlatformNotFound(t *testing.T) {
	tenant := attachedTenant("shop.example.com")
	ts := newMockTenantStore(tenant)
	pc := &mockPlatformClient{
		detailsErr: &platform.Error{StatusCode: http.StatusNotFound, Message: "not found"},
	}
	svc := newTestService(ts, pc)

	result, err := svc.Verify(context.Background(), tenant.ID, "shop.example.com")
	assert.NoError(t, err, "platform not-found is a normal outcome")
	assert.False(t, result.Verified)
	assert.Equal(t, domain.DomainNotFound, result.Status)
	assert.Equal(t, domain.DomainNotFound, tenant.DomainStatus)
}

func TestDomainService_Verify_Configured(t *testing.T) {
	tenant := attachedTenant("shop.example.com")
	ts := newMockTenantStore(tenant)
	pc := &mockPlatformClient{
		config: &domain.DomainConfig{ARecords: []string{"203.0.113.10"}, Misconfigured: boolPtr(false)},
	}
	svc := newTestService(ts, pc)

	result, err := svc.Verify(context.Background(), tenant.ID, "shop.example.com")
	assert.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, domain.DomainVerified, result.Status)
	assert.Equal(t, domain.DomainVerified, tenant.DomainStatus)
}

func TestDomainService_Verify_Misconfigured(t *testing.T) {
	tenant := attachedTenant("shop.example.com")
	ts := newMockTenantStore(tenant)
	pc := &mockPlatformClient{
		config: &domain.DomainConfig{Misconfigured: boolPtr(true)},
	}
	svc := newTestService(ts, pc)

	result, err := svc.Verify(context.Background(), tenant.ID, "shop.example.com")
	assert.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, domain.DomainPendingVerification, result.Status)
}

func TestDomainService_Verify_UnknownConfigStateIsNotVerified(t *testing.T) {
	tenant := attachedTenant("shop.example.com")
	tenant.DomainStatus = domain.DomainVerified
	ts := newMockTenantStore(tenant)
	pc := &mockPlatformClient{configErr: errors.New("config timeout")}
	svc := newTestService(ts, pc)

	result, err := svc.Verify(context.Background(), tenant.ID, "shop.example.com")
	assert.NoError(t, err)
	assert.False(t, result.Verified, "ambiguous data must never report verified")
	assert.Equal(t, domain.DomainPendingVerification, result.Status)
}

func TestDomainService_Verify_DetailsFailureAbortsWithoutMutation(t *testing.T) {
	tenant := attachedTenant("shop.example.com")
	tenant.DomainStatus = domain.DomainVerified
	ts := newMockTenantStore(tenant)
	pc := &mockPlatformClient{
		detailsErr: &platform.Error{StatusCode: http.StatusInternalServerError, Message: "upstream down"},
	}
	svc := newTestService(ts, pc)

	_, err := svc.Verify(context.Background(), tenant.ID, "shop.example.com")
	assert.Error(t, err)
	assert.Equal(t, 0, ts.writeCount, "primary lookup failure must not mutate state")
	assert.Equal(t, domain.DomainVerified, tenant.DomainStatus)
}

func TestDomainService_Detach(t *testing.T) {
	tenant := attachedTenant("shop.example.com")
	ts := newMockTenantStore(tenant)
	pc := &mockPlatformClient{}
	svc := newTestService(ts, pc)

	err := svc.Detach(context.Background(), tenant.ID, "shop.example.com")
	assert.NoError(t, err)
	assert.Equal(t, []string{"shop.example.com", "www.shop.example.com"}, pc.detached)
	assert.Empty(t, tenant.CustomDomain)
	assert.Equal(t, domain.DomainUnattached, tenant.DomainStatus)
	assert.Nil(t, tenant.DomainDNSRecords)
}

func TestDomainService_Detach_NotOwned(t *testing.T) {
	tenant := attachedTenant("shop.example.com")
	ts := newMockTenantStore(tenant)
	pc := &mockPlatformClient{}
	svc := newTestService(ts, pc)

	err := svc.Detach(context.Background(), tenant.ID, "other.example.com")
	assert.ErrorIs(t, err, ErrDomainNotOwned)
	assert.Equal(t, 0, pc.detachCalls)
	assert.Equal(t, "shop.example.com", tenant.CustomDomain)
}

func TestDomainService_Records_NoDomain(t *testing.T) {
	tenant := proTenant()
	svc := newTestService(newMockTenantStore(tenant), &mockPlatformClient{})

	_, err := svc.Records(context.Background(), tenant.ID)
	assert.ErrorIs(t, err, ErrNoDomainAttached)
}

func TestDomainService_Records(t *testing.T) {
	tenant := attachedTenant("shop.example.com")
	pc := &mockPlatformClient{
		config: &domain.DomainConfig{ARecords: []string{"203.0.113.10"}, CNAMETarget: "cname.test."},
	}
	svc := newTestService(newMockTenantStore(tenant), pc)

	records, err := svc.Records(context.Background(), tenant.ID)
	assert.NoError(t, err)
	assert.Equal(t, "203.0.113.10", records[0].Value)
	assert.Equal(t, "cname.test", records[1].Value)
}
