package core

import "testing"

func TestNumberFormatting(t *testing.T) {
	testCases := []struct {
		got, expected string
	}{
		{Itoa(0), "0"},
		{Itoa(-17), "-17"},
		{Itoa(123456), "123456"},
		{Utoa(4294967295), "4294967295"},
		{Hex8(0x1E), "0x1E"},
		{Hex8(0x08), "0x08"},
		{Decimal(23456, 1000, 1), "23.4"},
		{Decimal(-1500, 1000, 1), "-1.5"},
		{Decimal(-500, 1000, 2), "-0.50"},
		{Decimal(5, 1000, 3), "0.005"},
		{Decimal(101325000, 1000, 0), "101325"},
	}

	for _, tc := range testCases {
		if tc.got != tc.expected {
			t.Errorf("expected %q, got %q", tc.expected, tc.got)
		}
	}
}
