package opt

import "sync"

type statsKey struct {
	Tenant    string
	PlanDate  string
	Algorithm string
}

var (
	statsMu  sync.Mutex
	statsLog = map[statsKey]Stats{}
)

// RecordStats keeps the latest solve statistics per tenant, plan date and algorithm.
func RecordStats(tenant, planDate, algorithm string, s Stats) {
	statsMu.Lock()
	statsLog[statsKey{Tenant: tenant, PlanDate: planDate, Algorithm: algorithm}] = s
	statsMu.Unlock()
}

// GetStats returns the recorded statistics for a tenant and plan date, keyed by algorithm.
func GetStats(tenant, planDate string) map[string]Stats {
	statsMu.Lock()
	defer statsMu.Unlock()
	out := map[string]Stats{}
	for k, v := range statsLog {
		if k.Tenant == tenant && k.PlanDate == planDate {
			out[k.Algorithm] = v
		}
	}
	return out
}
