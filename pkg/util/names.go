package util

import (
	"sort"
	"strings"
)

var (
	// Cisco IOS interface abbreviations
	shortToLong = map[string]string{
		"gi":   "GigabitEthernet",
		"gig":  "GigabitEthernet",
		"te":   "TenGigabitEthernet",
		"ten":  "TenGigabitEthernet",
		"twe":  "TwentyFiveGigE",
		"fo":   "FortyGigabitEthernet",
		"hu":   "HundredGigE",
		"fa":   "FastEthernet",
		"po":   "Port-channel",
		"vl":   "Vlan",
		"vlan": "Vlan",
	}

	longToShort = map[string]string{
		"GigabitEthernet":      "Gi",
		"TenGigabitEthernet":   "Te",
		"TwentyFiveGigE":       "Twe",
		"FortyGigabitEthernet": "Fo",
		"HundredGigE":          "Hu",
		"FastEthernet":         "Fa",
		"Port-channel":         "Po",
		"Vlan":                 "Vl",
	}

	// shortToLongSorted contains abbreviation keys sorted longest-first
	// so that "vlan" is matched before "vl" in NormalizeInterfaceName.
	shortToLongSorted []string
)

func init() {
	shortToLongSorted = make([]string, 0, len(shortToLong))
	for k := range shortToLong {
		shortToLongSorted = append(shortToLongSorted, k)
	}
	sort.Slice(shortToLongSorted, func(i, j int) bool {
		if len(shortToLongSorted[i]) != len(shortToLongSorted[j]) {
			return len(shortToLongSorted[i]) > len(shortToLongSorted[j])
		}
		return shortToLongSorted[i] < shortToLongSorted[j]
	})
}

// NormalizeInterfaceName expands Cisco abbreviations
// gi0/1 -> GigabitEthernet0/1, te1/0/1 -> TenGigabitEthernet1/0/1.
// Junos names (ge-0/0/1, ae0) and unknown names are returned trimmed.
func NormalizeInterfaceName(name string) string {
	name = strings.TrimSpace(name)
	lower := strings.ToLower(name)

	for _, abbr := range shortToLongSorted {
		if strings.HasPrefix(lower, abbr) && len(name) > len(abbr) {
			suffix := name[len(abbr):]
			if suffix[0] >= '0' && suffix[0] <= '9' {
				return shortToLong[abbr] + suffix
			}
		}
	}

	return name
}

// ShortenInterfaceName converts a full Cisco interface name to short form
// GigabitEthernet0/1 -> Gi0/1, Port-channel1 -> Po1
func ShortenInterfaceName(name string) string {
	i := strings.IndexAny(name, "0123456789")
	if i <= 0 {
		return name
	}
	if short, ok := longToShort[name[:i]]; ok {
		return short + name[i:]
	}
	return name
}
