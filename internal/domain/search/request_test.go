package search

import (
	"strings"
	"testing"
)

func TestRequestValidate(t *testing.T) {
	r := Request{Query: "  "}
	if err := r.Validate(); err == nil {
		t.Fatal("blank query must fail")
	}

	conds := make([]Condition, MaxConditions+1)
	for i := range conds {
		c, err := NewMatch("file_type", "pdf")
		if err != nil {
			t.Fatalf("NewMatch: %v", err)
		}
		conds[i] = c
	}
	r = Request{Query: "q", Filters: conds}
	if err := r.Validate(); err == nil || !strings.Contains(err.Error(), "too many") {
		t.Fatalf("err = %v, want condition cap error", err)
	}

	r = Request{Query: "q", Filters: conds[:MaxConditions]}
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestClampTopK(t *testing.T) {
	tests := []struct {
		name string
		topK int
		want int
	}{
		{name: "unset uses default", topK: 0, want: DefaultTopK},
		{name: "negative uses default", topK: -5, want: DefaultTopK},
		{name: "in range kept", topK: 42, want: 42},
		{name: "over cap clamped", topK: MaxTopK + 1, want: MaxTopK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Request{TopK: tt.topK}
			r.ClampTopK(DefaultTopK, MaxTopK)
			if r.TopK != tt.want {
				t.Errorf("TopK = %d, want %d", r.TopK, tt.want)
			}
		})
	}
}

func TestEffectiveMinScore(t *testing.T) {
	r := Request{}
	if got := r.EffectiveMinScore(DefaultMinScore); got != DefaultMinScore {
		t.Errorf("default = %v", got)
	}

	zero := 0.0
	r.MinScore = &zero
	if got := r.EffectiveMinScore(DefaultMinScore); got != 0 {
		t.Errorf("explicit zero must override the default, got %v", got)
	}
}

func TestNewMatchValidation(t *testing.T) {
	if _, err := NewMatch(""); err == nil {
		t.Error("empty key must fail")
	}
	if _, err := NewMatch("tags"); err == nil {
		t.Error("no values must fail")
	}
	if _, err := NewMatch("tags", "ops", ""); err == nil {
		t.Error("empty value must fail")
	}
	c, err := NewMatch("tags", "ops", "deploy")
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	if !c.IsMatch() || c.IsRange() || c.Key() != "tags" || len(c.Values()) != 2 {
		t.Fatalf("condition = %+v", c)
	}
}

func TestNewRangeValidation(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	if _, err := NewRange("", Range{GTE: f(1)}); err == nil {
		t.Error("empty key must fail")
	}
	if _, err := NewRange("created_at", Range{}); err == nil {
		t.Error("no bounds must fail")
	}
	if _, err := NewRange("created_at", Range{GT: f(1), GTE: f(2)}); err == nil {
		t.Error("gt and gte together must fail")
	}
	if _, err := NewRange("created_at", Range{LT: f(1), LTE: f(2)}); err == nil {
		t.Error("lt and lte together must fail")
	}
	c, err := NewRange("created_at", Range{GTE: f(100), LT: f(200)})
	if err != nil {
		t.Fatalf("NewRange: %v", err)
	}
	if !c.IsRange() || c.IsMatch() || c.Range().GTE == nil || *c.Range().GTE != 100 {
		t.Fatalf("condition = %+v", c)
	}
}
