package ratelimit

import (
	"net/http"
	"strings"
)

// Tier groups routes that share a limit. Buckets are per tier, not per path,
// so requests for different slugs draw from the same allowance.
type Tier string

const (
	TierExempt      Tier = "exempt"
	TierPublic      Tier = "public"
	TierProfile     Tier = "profile"
	TierWrite       Tier = "write"
	TierCredentials Tier = "credentials"
)

// Classify maps a request onto its tier.
//
//	GET  /health, /metrics, any OPTIONS      exempt
//	POST /auth/register, /auth/login         credentials
//	GET  /auth/me, GET /profile/...          profile
//	PUT/POST /profile/...                    write
//	everything else (/jobs, /companies)      public
func Classify(method, path string) Tier {
	switch {
	case method == http.MethodOptions, path == "/health", path == "/metrics":
		return TierExempt
	case strings.HasPrefix(path, "/auth/"):
		if method == http.MethodPost {
			return TierCredentials
		}
		return TierProfile
	case path == "/profile" || strings.HasPrefix(path, "/profile/"):
		if method == http.MethodGet || method == http.MethodHead {
			return TierProfile
		}
		return TierWrite
	default:
		return TierPublic
	}
}

// keyedByAccount reports whether signed-in callers of t are limited per
// account rather than per address. Offices behind one NAT then do not share
// a profile allowance. Credential routes stay per address since the caller
// is not signed in yet.
func keyedByAccount(t Tier) bool {
	return t == TierProfile || t == TierWrite
}
