package security

import (
	"errors"
	"testing"
)

func TestMinLengthRule(t *testing.T) {
	validator := NewPasswordValidator(MinLengthRule(6))

	if err := validator.Validate("abc"); err == nil {
		t.Fatalf("expected violation for short password")
	}
	if err := validator.Validate("abcdef"); err != nil {
		t.Fatalf("six characters must pass: %v", err)
	}

	var violation *PasswordValidationError
	err := validator.Validate("ab")
	if !errors.As(err, &violation) {
		t.Fatalf("expected PasswordValidationError, got %T", err)
	}
	if violation.Code != "min_length" {
		t.Fatalf("unexpected violation code %q", violation.Code)
	}
}

func TestMinLengthRuleCountsRunes(t *testing.T) {
	validator := NewPasswordValidator(MinLengthRule(6))
	if err := validator.Validate("пароль"); err != nil {
		t.Fatalf("six runes must pass regardless of byte length: %v", err)
	}
}

func TestStrengthRulePenalizesUserInputs(t *testing.T) {
	validator := NewPasswordValidator(StrengthRule(3, "alice", "alice@example.com"))
	if err := validator.Validate("alice123"); err == nil {
		t.Fatalf("password built from the username must be rejected")
	}
}

func TestValidatorStopsAtFirstViolation(t *testing.T) {
	calls := 0
	counting := PasswordRuleFunc(func(string) error {
		calls++
		return nil
	})
	validator := NewPasswordValidator(MinLengthRule(6), counting)

	_ = validator.Validate("ab")
	if calls != 0 {
		t.Fatalf("later rules must not run after a violation")
	}

	_ = validator.Validate("abcdef")
	if calls != 1 {
		t.Fatalf("all rules must run on a passing password")
	}
}

func TestDefaultPasswordValidator(t *testing.T) {
	validator := DefaultPasswordValidator()
	if err := validator.Validate("12345"); err == nil {
		t.Fatalf("expected violation below six characters")
	}
	if err := validator.Validate("123456"); err != nil {
		t.Fatalf("default policy is length only: %v", err)
	}
}
