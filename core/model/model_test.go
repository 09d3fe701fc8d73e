package model

import (
	"math"
	"testing"
)

func TestNewSourceDefaultUnit(t *testing.T) {
	s := NewSource("Solar", 100, 0.10, "")
	if s.Unit != "kW" {
		t.Fatalf("expected default unit kW got %q", s.Unit)
	}
	s = NewSource("Wind", 150, 0.05, "MW")
	if s.Unit != "MW" {
		t.Fatalf("expected MW got %q", s.Unit)
	}
}

func TestSourceValidate(t *testing.T) {
	cases := []struct {
		name    string
		src     Source
		wantErr bool
	}{
		{"ok", NewSource("Solar", 100, 0.1, ""), false},
		{"zero capacity", NewSource("Solar", 0, 0, ""), false},
		{"empty name", NewSource("", 100, 0.1, ""), true},
		{"negative capacity", NewSource("Solar", -1, 0.1, ""), true},
		{"negative cost", NewSource("Solar", 1, -0.1, ""), true},
		{"nan capacity", NewSource("Solar", math.NaN(), 0.1, ""), true},
		{"inf cost", NewSource("Solar", 1, math.Inf(1), ""), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.src.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestConsumerValidate(t *testing.T) {
	if err := NewConsumer("A", 3).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := NewConsumer("", 3).Validate(); err == nil {
		t.Fatal("expected error for empty name")
	}
	if err := NewConsumer("A", -3).Validate(); err == nil {
		t.Fatal("expected error for negative demand")
	}
}
