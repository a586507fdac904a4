package domain

import (
	"fmt"
	"strings"
)

// Stack is the deployment environment of a tenant application.
type Stack string

const (
	// StackProd is the production environment.
	StackProd Stack = "prod"
	// StackStaging is the staging environment.
	StackStaging Stack = "staging"
	// StackDev is the development environment.
	StackDev Stack = "dev"
)

// Tenant identifies an isolated data partition: a client/application/environment triple.
// It is derived from a validated credential, immutable per request, and never
// persisted beyond audit events.
type Tenant struct {
	ClientName string
	AppName    string
	Stack      Stack
	AppURL     string
}

// Validate checks that all identity fields required for index resolution are present.
func (t Tenant) Validate() error {
	if strings.TrimSpace(t.ClientName) == "" {
		return fmt.Errorf("%w: client name is required", ErrValidation)
	}
	if strings.TrimSpace(t.AppName) == "" {
		return fmt.Errorf("%w: app name is required", ErrValidation)
	}
	switch t.Stack {
	case StackProd, StackStaging, StackDev:
	default:
		return fmt.Errorf("%w: stack must be prod, staging or dev, got %q", ErrValidation, t.Stack)
	}
	return nil
}

// ResolveIndex maps a tenant and entity type to the canonical index name.
//
// The mapping is pure and deterministic: "{client}_{app}_{stack}-{entityType}",
// lower-cased, with every rune outside [a-z0-9_-] replaced by '_'. All entity
// operations for one logical (tenant, entityType) pair must go through this
// single function, otherwise stored entities become unreachable.
func ResolveIndex(t Tenant, entityType string) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	if strings.TrimSpace(entityType) == "" {
		return "", fmt.Errorf("%w: entity type is required", ErrValidation)
	}

	raw := fmt.Sprintf("%s_%s_%s-%s", t.ClientName, t.AppName, t.Stack, entityType)
	return normalizeIndexName(raw), nil
}

// normalizeIndexName lower-cases and restricts an index name to [a-z0-9_-].
func normalizeIndexName(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
