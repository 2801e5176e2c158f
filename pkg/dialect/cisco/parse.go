package cisco

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/netconfig/netconfig/pkg/dialect"
	"github.com/netconfig/netconfig/pkg/model"
)

var (
	vlanRe     = regexp.MustCompile(`^vlan (\d+)`)
	vlanNameRe = regexp.MustCompile(`^\s*name (.+)`)
)

// Parse reads VLAN stanzas from IOS configuration text.
//
// Lines are trimmed before matching. A "vlan <id>" line opens a stanza
// (closing any open one), a "name" line inside it sets the name, and a
// line starting with "vlan" or "interface", or a lone "!", closes it.
// Any other line, blank ones included, leaves the stanza open. A VLAN
// without a name is called VLAN<id>. Duplicates are returned as found.
// An ID too large for an int still opens a stanza, but that stanza is
// dropped instead of returned.
func Parse(text string) []dialect.ParsedVlan {
	var (
		result  []dialect.ParsedVlan
		current *dialect.ParsedVlan
		skip    bool // current holds an unrepresentable ID
	)

	flush := func() {
		if current == nil {
			return
		}
		if skip {
			current, skip = nil, false
			return
		}
		if current.Name == "" {
			current.Name = model.DefaultVlanName(current.VlanID)
		}
		result = append(result, *current)
		current = nil
	}

	for n, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		if id, isVlan, ok := matchVlan(line); isVlan {
			flush()
			current = &dialect.ParsedVlan{VlanID: id, Line: n + 1}
			skip = !ok
			continue
		}
		if current == nil {
			continue
		}

		if m := vlanNameRe.FindStringSubmatch(line); m != nil {
			current.Name = m[1]
		} else if strings.HasPrefix(line, "vlan") || strings.HasPrefix(line, "interface") || line == "!" {
			flush()
		}
	}
	flush()

	return result
}

// matchVlan reports whether line is a "vlan <digits>" line and, if so,
// its ID. ok is false when the ID overflows an int.
func matchVlan(line string) (id int, isVlan, ok bool) {
	m := vlanRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, true, false
	}
	return id, true, true
}
