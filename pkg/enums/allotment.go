package enums

import "fmt"

// AllotmentOutcome tags a reservation with the capacity check result.
type AllotmentOutcome string

const (
	AllotmentOutcomeSatisfiable   AllotmentOutcome = "satisfiable"
	AllotmentOutcomeUnsatisfiable AllotmentOutcome = "unsatisfiable"
)

// String implements fmt.Stringer.
func (o AllotmentOutcome) String() string {
	return string(o)
}

// IsValid reports whether the value is a known AllotmentOutcome.
func (o AllotmentOutcome) IsValid() bool {
	return o == AllotmentOutcomeSatisfiable || o == AllotmentOutcomeUnsatisfiable
}

// AllotmentPolicy decides what booking creation does with an unsatisfiable outcome.
type AllotmentPolicy string

const (
	// AllotmentPolicyAdvisory records the booking and flags the outcome.
	AllotmentPolicyAdvisory AllotmentPolicy = "advisory"
	// AllotmentPolicyEnforcing rejects the booking.
	AllotmentPolicyEnforcing AllotmentPolicy = "enforcing"
)

var validAllotmentPolicies = []AllotmentPolicy{
	AllotmentPolicyAdvisory,
	AllotmentPolicyEnforcing,
}

// String implements fmt.Stringer.
func (p AllotmentPolicy) String() string {
	return string(p)
}

// IsValid reports whether the value is a known AllotmentPolicy.
func (p AllotmentPolicy) IsValid() bool {
	for _, candidate := range validAllotmentPolicies {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseAllotmentPolicy converts raw input into an AllotmentPolicy.
func ParseAllotmentPolicy(value string) (AllotmentPolicy, error) {
	for _, candidate := range validAllotmentPolicies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid allotment policy %q", value)
}

// AllotmentGuard selects how the check-then-write span is protected.
type AllotmentGuard string

const (
	AllotmentGuardNone        AllotmentGuard = "none"
	AllotmentGuardTransaction AllotmentGuard = "transaction"
	AllotmentGuardLock        AllotmentGuard = "lock"
)

var validAllotmentGuards = []AllotmentGuard{
	AllotmentGuardNone,
	AllotmentGuardTransaction,
	AllotmentGuardLock,
}

// String implements fmt.Stringer.
func (g AllotmentGuard) String() string {
	return string(g)
}

// IsValid reports whether the value is a known AllotmentGuard.
func (g AllotmentGuard) IsValid() bool {
	for _, candidate := range validAllotmentGuards {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseAllotmentGuard converts raw input into an AllotmentGuard.
func ParseAllotmentGuard(value string) (AllotmentGuard, error) {
	for _, candidate := range validAllotmentGuards {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid allotment guard %q", value)
}
