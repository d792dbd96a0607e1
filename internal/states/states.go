package states

import (
	"sort"
	"strings"

	"github.com/poltracker/poltracker/internal/congress"
)

// Color is the partisan lean of a state's senate delegation.
type Color string

const (
	ColorBlue   Color = "blue"
	ColorRed    Color = "red"
	ColorPurple Color = "purple"
	ColorGray   Color = "gray"
)

// Names maps 2-letter state codes to display names, including DC.
var Names = map[string]string{
	"AL": "Alabama",
	"AK": "Alaska",
	"AZ": "Arizona",
	"AR": "Arkansas",
	"CA": "California",
	"CO": "Colorado",
	"CT": "Connecticut",
	"DE": "Delaware",
	"DC": "District of Columbia",
	"FL": "Florida",
	"GA": "Georgia",
	"HI": "Hawaii",
	"ID": "Idaho",
	"IL": "Illinois",
	"IN": "Indiana",
	"IA": "Iowa",
	"KS": "Kansas",
	"KY": "Kentucky",
	"LA": "Louisiana",
	"ME": "Maine",
	"MD": "Maryland",
	"MA": "Massachusetts",
	"MI": "Michigan",
	"MN": "Minnesota",
	"MS": "Mississippi",
	"MO": "Missouri",
	"MT": "Montana",
	"NE": "Nebraska",
	"NV": "Nevada",
	"NH": "New Hampshire",
	"NJ": "New Jersey",
	"NM": "New Mexico",
	"NY": "New York",
	"NC": "North Carolina",
	"ND": "North Dakota",
	"OH": "Ohio",
	"OK": "Oklahoma",
	"OR": "Oregon",
	"PA": "Pennsylvania",
	"RI": "Rhode Island",
	"SC": "South Carolina",
	"SD": "South Dakota",
	"TN": "Tennessee",
	"TX": "Texas",
	"UT": "Utah",
	"VT": "Vermont",
	"VA": "Virginia",
	"WA": "Washington",
	"WV": "West Virginia",
	"WI": "Wisconsin",
	"WY": "Wyoming",
}

// Name resolves a state code to its display name. The second return is
// false for unknown codes.
func Name(code string) (string, bool) {
	name, ok := Names[strings.ToUpper(code)]
	return name, ok
}

// Codes returns every known state code in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(Names))
	for code := range Names {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// classifyParty buckets a resolved party string. Unrecognized parties
// are not counted.
func classifyParty(party string) (democrat, republican bool) {
	p := strings.ToLower(strings.TrimSpace(party))
	if strings.Contains(p, "democrat") || p == "d" {
		return true, false
	}
	if strings.Contains(p, "republican") || p == "r" {
		return false, true
	}
	return false, false
}

// Classify reduces a state's senator roster to a partisan color. More
// Democrats than Republicans is blue, the reverse is red, a positive
// tie is purple, and a delegation with no classified senators is gray.
func Classify(members []congress.Member) Color {
	var dems, reps int
	for _, m := range members {
		d, r := classifyParty(m.Party)
		switch {
		case d:
			dems++
		case r:
			reps++
		}
	}
	switch {
	case dems > reps:
		return ColorBlue
	case reps > dems:
		return ColorRed
	case dems == reps && dems > 0:
		return ColorPurple
	default:
		return ColorGray
	}
}
