package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12.345", 1234, false},
		{"12.346", 1235, false},
		{"0", 0, false},
		{"0.00", 0, false},
		{".5", 50, false},
		{"7", 700, false},
		{"", 0, true},
		{"-1", 0, true},
		{"+1", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDecimalToCents(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDecimalToCents(%q): expected error, got %d", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDecimalToCents(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := Money{Cents: 1234}
	b, err := m.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "12.34" {
		t.Fatalf("marshal = %s, want 12.34", b)
	}

	var back Money
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Cents != 1234 {
		t.Fatalf("round trip cents = %d, want 1234", back.Cents)
	}

	// Quoted strings are accepted too, since HTML number inputs often
	// arrive as strings.
	var fromString Money
	if err := fromString.UnmarshalJSON([]byte(`"9,99"`)); err != nil {
		t.Fatalf("unmarshal quoted: %v", err)
	}
	if fromString.Cents != 999 {
		t.Fatalf("quoted cents = %d, want 999", fromString.Cents)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 0}).Validate(); err != nil {
		t.Errorf("zero amount should be valid: %v", err)
	}
	if err := (Money{Cents: -1}).Validate(); err == nil {
		t.Error("negative amount should be invalid")
	}
}
