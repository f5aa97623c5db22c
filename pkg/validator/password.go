package validator

import (
	"fmt"
	"unicode"
)

// PasswordPolicy describes the credential rules enforced by the identity
// store. Every violated rule is reported, not just the first.
type PasswordPolicy struct {
	MinLength         int
	RequireDigit      bool
	RequireLowercase  bool
	RequireUppercase  bool
	RequireNonAlnum   bool
	RequiredUniqueMin int
}

// DefaultPasswordPolicy returns the default policy
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:         6,
		RequireDigit:      true,
		RequireLowercase:  true,
		RequireUppercase:  true,
		RequireNonAlnum:   true,
		RequiredUniqueMin: 1,
	}
}

// Check returns one message per violated rule, or nil if the password is
// acceptable
func (p PasswordPolicy) Check(password string) []string {
	var (
		violations                           []string
		hasDigit, hasLower, hasUpper, hasSym bool
		unique                               = map[rune]struct{}{}
		length                               int
	)

	for _, r := range password {
		length++
		unique[r] = struct{}{}
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case !unicode.IsLetter(r):
			hasSym = true
		}
	}

	if length < p.MinLength {
		violations = append(violations, fmt.Sprintf("Passwords must be at least %d characters.", p.MinLength))
	}
	if p.RequireNonAlnum && !hasSym {
		violations = append(violations, "Passwords must have at least one non alphanumeric character.")
	}
	if p.RequireDigit && !hasDigit {
		violations = append(violations, "Passwords must have at least one digit ('0'-'9').")
	}
	if p.RequireLowercase && !hasLower {
		violations = append(violations, "Passwords must have at least one lowercase ('a'-'z').")
	}
	if p.RequireUppercase && !hasUpper {
		violations = append(violations, "Passwords must have at least one uppercase ('A'-'Z').")
	}
	if len(unique) < p.RequiredUniqueMin {
		violations = append(violations, fmt.Sprintf("Passwords must use at least %d different characters.", p.RequiredUniqueMin))
	}

	return violations
}
