package models

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks struct tags on a payload and returns one readable error
// listing every failing field.
func Validate(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// ValidateTransaction applies the struct tags plus the non-zero amount rule.
func ValidateTransaction(t Transaction) error {
	if err := Validate(t); err != nil {
		return err
	}
	if t.Amount.IsZero() {
		return errors.New("Amount must be non-zero")
	}
	return nil
}

// ValidateInvestment applies the struct tags plus the positive amount rule.
func ValidateInvestment(inv Investment) error {
	if err := Validate(inv); err != nil {
		return err
	}
	if !inv.InvestmentAmount.IsPositive() {
		return errors.New("InvestmentAmount must be positive")
	}
	return nil
}
