package ratelimit

import (
	"strings"
	"time"

	"github.com/jonathan/job-board/internal/config"
)

// Policy is one tier's allowance: Limit requests per Window, with at most
// Burst spent at once. Burst 0 means Limit. Limit 0 leaves the tier unlimited.
type Policy struct {
	Limit  int
	Window time.Duration
	Burst  int
}

// Config holds the limiter settings.
type Config struct {
	Enabled   bool
	Policies  map[Tier]Policy
	Allowlist map[string]bool
	Denylist  map[string]bool
}

// FromConfig builds the limiter configuration from the loaded service config.
// Writes and credential attempts may only spend a third of their allowance
// in a burst.
func FromConfig(cfg config.RateLimit) Config {
	return Config{
		Enabled: cfg.Enabled,
		Policies: map[Tier]Policy{
			TierPublic:      {Limit: cfg.PublicLimit, Window: cfg.Window},
			TierProfile:     {Limit: cfg.ProfileLimit, Window: cfg.Window},
			TierWrite:       {Limit: cfg.WriteLimit, Window: cfg.Window, Burst: third(cfg.WriteLimit)},
			TierCredentials: {Limit: cfg.CredentialLimit, Window: cfg.Window, Burst: third(cfg.CredentialLimit)},
		},
		Allowlist: addressSet(cfg.Allowlist),
		Denylist:  addressSet(cfg.Denylist),
	}
}

func third(limit int) int {
	return max(1, limit/3)
}

func addressSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, addr := range list {
		if addr = strings.TrimSpace(addr); addr != "" {
			set[addr] = true
		}
	}
	return set
}
