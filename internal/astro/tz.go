package astro

import "strings"

// tzOffsets maps timezone abbreviations to their fixed UTC offset in minutes.
// Abbreviations are ambiguous by nature (there are three ISTs); the table
// keeps the common resolution for each and makes no DST decisions: "EST"
// always means UTC-5, "EDT" always UTC-4.
var tzOffsets = map[string]int{
	"UTC": 0,
	"GMT": 0,
	"WET": 0,

	// North America
	"NST":  -210,
	"NDT":  -150,
	"AST":  -240,
	"ADT":  -180,
	"EST":  -300,
	"EDT":  -240,
	"CST":  -360,
	"CDT":  -300,
	"MST":  -420,
	"MDT":  -360,
	"PST":  -480,
	"PDT":  -420,
	"AKST": -540,
	"AKDT": -480,
	"HST":  -600,

	// South America
	"ART": -180,
	"BRT": -180,
	"CLT": -240,
	"VET": -240,
	"PET": -300,
	"COT": -300,

	// Europe
	"WEST": 60,
	"BST":  60,
	"IRT":  60, // Irish Time
	"CET":  60,
	"CEST": 120,
	"EET":  120,
	"EEST": 180,
	"MSK":  180,
	"TRT":  180,

	// Africa
	"WAT":  60,
	"CAT":  120,
	"SAST": 120,
	"EAT":  180,

	// Asia
	"IRST": 210,
	"GST":  240,
	"AFT":  270,
	"PKT":  300,
	"IST":  330, // India Standard Time
	"NPT":  345,
	"BDT":  360,
	"MMT":  390,
	"ICT":  420,
	"WIB":  420,
	"SGT":  480,
	"HKT":  480,
	"PHT":  480,
	"AWST": 480,
	"JST":  540,
	"KST":  540,

	// Oceania
	"ACST": 570,
	"ACDT": 630,
	"AEST": 600,
	"AEDT": 660,
	"NZST": 720,
	"NZDT": 780,
	"CHST": 600,
	"SST":  -660,
}

// tzOffsetMinutes looks up a timezone abbreviation, case-insensitively.
func tzOffsetMinutes(abbrev string) (int, bool) {
	off, ok := tzOffsets[strings.ToUpper(strings.TrimSpace(abbrev))]
	return off, ok
}
