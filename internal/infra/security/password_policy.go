package security

import "fmt"

const (
	defaultMinPasswordLength   = 10
	defaultMinCharacterClasses = 3
	defaultMinZxcvbnScore      = 3
)

// DefaultPasswordValidator returns the built-in validator enforcing the
// registration password policy with length, character class, and zxcvbn
// strength checks.
func DefaultPasswordValidator() *PasswordValidator {
	return NewPasswordValidator(
		MinLengthRule(defaultMinPasswordLength),
		RequireCharacterClassesRule(defaultMinCharacterClasses),
		RequirePasswordStrengthRule(defaultMinZxcvbnScore),
	)
}

// PasswordPolicy adapts the password validator to the usecase-level policy
// interface, feeding the username into the strength check so passwords
// derived from it are rejected.
type PasswordPolicy struct {
	factory func(inputs []string) *PasswordValidator
}

// NewPasswordPolicy builds the default registration password policy.
func NewPasswordPolicy() *PasswordPolicy {
	return &PasswordPolicy{
		factory: func(inputs []string) *PasswordValidator {
			return NewPasswordValidator(
				MinLengthRule(defaultMinPasswordLength),
				RequireCharacterClassesRule(defaultMinCharacterClasses),
				RequirePasswordStrengthRule(defaultMinZxcvbnScore, inputs...),
			)
		},
	}
}

// Validate applies the configured validator to ensure the password meets
// policy requirements.
func (p *PasswordPolicy) Validate(password, username string) error {
	if p == nil || p.factory == nil {
		return fmt.Errorf("password policy not configured")
	}

	inputs := make([]string, 0, 1)
	if username != "" {
		inputs = append(inputs, username)
	}

	return p.factory(inputs).Validate(password)
}
