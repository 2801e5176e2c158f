package util

import "testing"

func TestNormalizeInterfaceName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Gi0/1", "GigabitEthernet0/1"},
		{"gi0/1", "GigabitEthernet0/1"},
		{"gig1/0/24", "GigabitEthernet1/0/24"},
		{"Te0/2", "TenGigabitEthernet0/2"},
		{"fa0/3", "FastEthernet0/3"},
		{"Po1", "Port-channel1"},
		{"vlan100", "Vlan100"},
		{"Vl100", "Vlan100"},
		{"GigabitEthernet0/1", "GigabitEthernet0/1"},
		{"ge-0/0/1", "ge-0/0/1"},
		{"ae0", "ae0"},
		{"  Gi0/5  ", "GigabitEthernet0/5"},
		{"gi", "gi"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeInterfaceName(tt.input); got != tt.want {
				t.Errorf("NormalizeInterfaceName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestShortenInterfaceName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"GigabitEthernet0/1", "Gi0/1"},
		{"TenGigabitEthernet0/2", "Te0/2"},
		{"Port-channel1", "Po1"},
		{"ge-0/0/1", "ge-0/0/1"},
		{"Gi0/1", "Gi0/1"},
		{"mgmt", "mgmt"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ShortenInterfaceName(tt.input); got != tt.want {
				t.Errorf("ShortenInterfaceName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
