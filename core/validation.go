package core

import (
	"regexp"
	"strings"
)

const microsoftTenantError = "Tenant ID must be a valid GUID or one of: common, organizations, consumers"

// Canonical 8-4-4-4-12 hexadecimal GUID shape.
var guidShape = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

var microsoftTenantAliases = []string{"common", "organizations", "consumers"}

// ValidateProviderConfig checks credentials before any storage or cipher
// access. Rules run in order and the first failure short-circuits:
// non-blank client id, non-blank client secret, then the Microsoft tenant
// rule. Google never requires a tenant id.
func ValidateProviderConfig(provider Provider, clientID, clientSecret, tenantID string) ValidationResult {
	if strings.TrimSpace(clientID) == "" {
		return ValidationResult{Valid: false, Error: "Client ID is required"}
	}
	if strings.TrimSpace(clientSecret) == "" {
		return ValidationResult{Valid: false, Error: "Client Secret is required"}
	}
	if provider == ProviderMicrosoft {
		if !isValidMicrosoftTenant(tenantID) {
			return ValidationResult{Valid: false, Error: microsoftTenantError}
		}
	}
	return ValidationResult{Valid: true}
}

func isValidMicrosoftTenant(tenantID string) bool {
	trimmed := strings.TrimSpace(tenantID)
	if trimmed == "" {
		return false
	}
	for _, alias := range microsoftTenantAliases {
		if strings.EqualFold(trimmed, alias) {
			return true
		}
	}
	return guidShape.MatchString(trimmed)
}
