package domain

import "strings"

// Defaults published by the hosting platform, emitted when the config lookup
// yields no recommendation so the tenant always sees actionable records.
const (
	DefaultARecordValue = "76.76.21.21"
	DefaultCNAMETarget  = "cname.vercel-dns.com"
)

// ReconcileDNSRecords merges the heterogeneous config and details lookups
// into the ordered record list a tenant must publish: apex A first, www CNAME
// second, then verification records in source order. Duplicate challenges
// returned by the platform are reflected as-is, not de-duplicated.
func ReconcileDNSRecords(domainName string, cfg DomainConfig, details DomainDetails) []DNSRecord {
	records := make([]DNSRecord, 0, 2+len(details.Verification))

	apex := DefaultARecordValue
	if len(cfg.ARecords) > 0 {
		apex = cfg.ARecords[0]
	}
	records = append(records, DNSRecord{Type: "A", Name: "@", Value: apex})

	cname := DefaultCNAMETarget
	if cfg.CNAMETarget != "" {
		cname = strings.TrimSuffix(cfg.CNAMETarget, ".")
	}
	records = append(records, DNSRecord{Type: "CNAME", Name: "www", Value: cname})

	for _, v := range details.Verification {
		records = append(records, DNSRecord{
			Type:  v.Type,
			Name:  ZoneRelativeLabel(v.Domain, domainName),
			Value: v.Value,
		})
	}

	return records
}

// ZoneRelativeLabel converts a fully-qualified challenge name into a label
// relative to the zone apex: "_verify.example.com" becomes "_verify" and
// "example.com" itself becomes "@". Names outside the zone pass through.
func ZoneRelativeLabel(fqdn, zone string) string {
	if fqdn == zone {
		return "@"
	}
	return strings.TrimSuffix(fqdn, "."+zone)
}
