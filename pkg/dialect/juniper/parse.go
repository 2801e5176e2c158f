package juniper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/netconfig/netconfig/pkg/dialect"
)

var vlanStanzaRe = regexp.MustCompile(`(\w+)\s*\{\s*vlan-id\s+(\d+)`)

// Parse scans the whole text for "<name> { vlan-id <id>" and returns one
// VLAN per match in order of appearance. The scan is not brace-aware: it
// does not check that a match sits inside a vlans block, and names made of
// anything other than word characters are cut to their trailing word.
// Only ASCII whitespace separates tokens, so a no-break space (U+00A0) or
// other Unicode space between them prevents a match.
func Parse(text string) []dialect.ParsedVlan {
	var result []dialect.ParsedVlan
	line, prev := 1, 0
	for _, m := range vlanStanzaRe.FindAllStringSubmatchIndex(text, -1) {
		// matches come in order, so only the gap since the last one is counted
		line += strings.Count(text[prev:m[0]], "\n")
		prev = m[0]

		id, err := strconv.Atoi(text[m[4]:m[5]])
		if err != nil {
			continue
		}
		result = append(result, dialect.ParsedVlan{
			VlanID: id,
			Name:   text[m[2]:m[3]],
			Line:   line,
		})
	}
	return result
}
