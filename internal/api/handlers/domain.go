package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/GiacomoGonzales/shopifree-domains/internal/api/middleware"
	"github.com/GiacomoGonzales/shopifree-domains/internal/domain"
	"github.com/GiacomoGonzales/shopifree-domains/internal/platform"
	"github.com/GiacomoGonzales/shopifree-domains/internal/service"
)

type DomainHandler struct {
	svc *service.DomainService
}

func NewDomainHandler(svc *service.DomainService) *DomainHandler {
	return &DomainHandler{svc: svc}
}

type domainRequest struct {
	Domain string `json:"domain"`
}

type attachDomainResponse struct {
	Domain     string                         `json:"domain"`
	DNSRecords []domain.DNSRecord             `json:"dns_records"`
	Challenges []domain.VerificationChallenge `json:"challenges"`
}

type verifyDomainResponse struct {
	Verified   bool               `json:"verified"`
	Status     domain.DomainStatus `json:"status"`
	DNSRecords []domain.DNSRecord `json:"dns_records"`
}

type domainStatusResponse struct {
	Domain     string                         `json:"domain,omitempty"`
	Status     domain.DomainStatus            `json:"status"`
	DNSRecords []domain.DNSRecord             `json:"dns_records,omitempty"`
	Challenges []domain.VerificationChallenge `json:"challenges,omitempty"`
}

func (h *DomainHandler) Attach(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	req, ok := decodeDomainRequest(w, r)
	if !ok {
		return
	}

	result, err := h.svc.Attach(r.Context(), tenant.ID, req.Domain)
	if err != nil {
		writeDomainError(w, err, "failed to attach domain")
		return
	}

	writeJSON(w, http.StatusOK, attachDomainResponse{
		Domain:     result.Domain,
		DNSRecords: result.DNSRecords,
		Challenges: result.Challenges,
	})
}

func (h *DomainHandler) Verify(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	req, ok := decodeDomainRequest(w, r)
	if !ok {
		return
	}

	result, err := h.svc.Verify(r.Context(), tenant.ID, req.Domain)
	if err != nil {
		writeDomainError(w, err, "failed to verify domain")
		return
	}

	writeJSON(w, http.StatusOK, verifyDomainResponse{
		Verified:   result.Verified,
		Status:     result.Status,
		DNSRecords: result.DNSRecords,
	})
}

func (h *DomainHandler) Detach(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	req, ok := decodeDomainRequest(w, r)
	if !ok {
		return
	}

	if err := h.svc.Detach(r.Context(), tenant.ID, req.Domain); err != nil {
		writeDomainError(w, err, "failed to detach domain")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Status returns the cached projection from the tenant record. The tenant in
// context was loaded fresh by the auth middleware on this request.
func (h *DomainHandler) Status(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	status := tenant.DomainStatus
	if status == "" {
		status = domain.DomainUnattached
	}

	writeJSON(w, http.StatusOK, domainStatusResponse{
		Domain:     tenant.CustomDomain,
		Status:     status,
		DNSRecords: tenant.DomainDNSRecords,
		Challenges: tenant.DomainVerification,
	})
}

// Records re-derives the DNS records for the attached domain from a live
// platform lookup.
func (h *DomainHandler) Records(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	records, err := h.svc.Records(r.Context(), tenant.ID)
	if err != nil {
		writeDomainError(w, err, "failed to fetch DNS records")
		return
	}

	writeJSON(w, http.StatusOK, map[string][]domain.DNSRecord{"dns_records": records})
}

func decodeDomainRequest(w http.ResponseWriter, r *http.Request) (domainRequest, bool) {
	var req domainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if req.Domain == "" {
		writeError(w, http.StatusBadRequest, "domain is required")
		return req, false
	}
	return req, true
}

// writeDomainError maps service and platform errors onto the HTTP surface:
// validation 400, plan/ownership 403, unknown tenant 404, informative
// platform rejections 400 with the code passed through, everything else
// 502/500.
func writeDomainError(w http.ResponseWriter, err error, fallback string) {
	var pe *platform.Error
	switch {
	case errors.Is(err, domain.ErrInvalidDomainName),
		errors.Is(err, service.ErrNoDomainAttached):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPlanRequired),
		errors.Is(err, service.ErrDomainNotOwned):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrTenantNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &pe):
		writePlatformError(w, pe)
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func writePlatformError(w http.ResponseWriter, pe *platform.Error) {
	switch pe.Code {
	case platform.CodeDomainAlreadyInUse:
		writeErrorCode(w, http.StatusBadRequest, "this domain is already in use by another project", pe.Code)
	case platform.CodeInvalidDomain:
		writeErrorCode(w, http.StatusBadRequest, "this domain is not valid", pe.Code)
	default:
		msg := pe.Message
		if msg == "" {
			msg = "hosting platform error"
		}
		writeErrorCode(w, http.StatusBadGateway, msg, pe.Code)
	}
}
