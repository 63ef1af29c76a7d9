package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	defaultDesignDownpaymentProgressBaseline = 20
	defaultPostDesignPhase                   = "FOR_BUILD"
)

// DesignDownpaymentProgressBaseline is the minimum design progress recorded once a
// design downpayment is first received.
//
// Set via env:
// - DESIGN_DOWNPAYMENT_PROGRESS_BASELINE=20
//
// Always clamped to [0,100].
func DesignDownpaymentProgressBaseline() int {
	baseline := defaultDesignDownpaymentProgressBaseline
	if v := strings.TrimSpace(os.Getenv("DESIGN_DOWNPAYMENT_PROGRESS_BASELINE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			baseline = n
		}
	}
	if baseline < 0 {
		return 0
	}
	if baseline > 100 {
		return 100
	}
	return baseline
}

// PostDesignPhase is the project phase forced once a design budget is approved.
//
// Set via env:
// - POST_DESIGN_PHASE=FOR_BUILD
func PostDesignPhase() string {
	if v := strings.TrimSpace(os.Getenv("POST_DESIGN_PHASE")); v != "" {
		return v
	}
	return defaultPostDesignPhase
}

// SkipMigrations disables AutoMigrate on server startup (run cmd tooling instead).
func SkipMigrations() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
