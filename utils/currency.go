package utils

import (
	"strings"

	"github.com/Rhymond/go-money"
)

// NormalizeCurrency upper-cases an ISO 4217 code and rejects codes unknown to go-money.
// An empty code resolves to fallback.
func NormalizeCurrency(code string, fallback string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = strings.ToUpper(strings.TrimSpace(fallback))
	}
	if code == "" {
		return "", NewValidationError("currency", "required")
	}
	if money.GetCurrency(code) == nil {
		return "", NewValidationError("currency", "unknown currency code "+code)
	}
	return code, nil
}
