package domain

import (
	"errors"
	"testing"
)

func TestResolveIndex(t *testing.T) {
	tests := []struct {
		name       string
		tenant     Tenant
		entityType string
		want       string
		wantErr    bool
	}{
		{
			name:       "basic",
			tenant:     Tenant{ClientName: "acme", AppName: "portal", Stack: StackProd},
			entityType: "document",
			want:       "acme_portal_prod-document",
		},
		{
			name:       "lowercased",
			tenant:     Tenant{ClientName: "Acme", AppName: "Portal", Stack: StackStaging},
			entityType: "Document",
			want:       "acme_portal_staging-document",
		},
		{
			name:       "disallowed runes replaced",
			tenant:     Tenant{ClientName: "acme corp", AppName: "portal.v2", Stack: StackDev},
			entityType: "user/profile",
			want:       "acme_corp_portal_v2_dev-user_profile",
		},
		{
			name:       "missing client name",
			tenant:     Tenant{AppName: "portal", Stack: StackProd},
			entityType: "document",
			wantErr:    true,
		},
		{
			name:       "missing app name",
			tenant:     Tenant{ClientName: "acme", Stack: StackProd},
			entityType: "document",
			wantErr:    true,
		},
		{
			name:       "invalid stack",
			tenant:     Tenant{ClientName: "acme", AppName: "portal", Stack: "qa"},
			entityType: "document",
			wantErr:    true,
		},
		{
			name:    "missing entity type",
			tenant:  Tenant{ClientName: "acme", AppName: "portal", Stack: StackProd},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveIndex(tt.tenant, tt.entityType)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("err = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveIndex: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveIndex() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveIndexDeterministic(t *testing.T) {
	tenant := Tenant{ClientName: "Acme", AppName: "Portal", Stack: StackProd}

	a, err := ResolveIndex(tenant, "document")
	if err != nil {
		t.Fatalf("ResolveIndex: %v", err)
	}
	b, err := ResolveIndex(tenant, "document")
	if err != nil {
		t.Fatalf("ResolveIndex: %v", err)
	}
	if a != b {
		t.Fatalf("resolution not deterministic: %q vs %q", a, b)
	}
}
