package astro

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is one fetchable content kind. The value is the canonical name used
// in job keys, so it must stay stable across releases.
type Kind string

const (
	KindSkywatch         Kind = "Skywatch"
	KindAstrologyAnswers Kind = "AstrologyAnswers"

	KindAries       Kind = "Aries"
	KindTaurus      Kind = "Taurus"
	KindGemini      Kind = "Gemini"
	KindCancer      Kind = "Cancer"
	KindLeo         Kind = "Leo"
	KindVirgo       Kind = "Virgo"
	KindLibra       Kind = "Libra"
	KindScorpio     Kind = "Scorpio"
	KindSagittarius Kind = "Sagittarius"
	KindCapricorn   Kind = "Capricorn"
	KindAquarius    Kind = "Aquarius"
	KindPisces      Kind = "Pisces"
)

var ErrUnknownKind = errors.New("unknown content kind")

var signs = []Kind{
	KindAries, KindTaurus, KindGemini, KindCancer,
	KindLeo, KindVirgo, KindLibra, KindScorpio,
	KindSagittarius, KindCapricorn, KindAquarius, KindPisces,
}

// signAbbrevs maps the first three letters of a sign to its Kind.
var signAbbrevs = func() map[string]Kind {
	m := make(map[string]Kind, len(signs))
	for _, s := range signs {
		m[strings.ToLower(string(s))[:3]] = s
	}
	return m
}()

var kindsByName = func() map[string]Kind {
	m := map[string]Kind{
		string(KindSkywatch):         KindSkywatch,
		string(KindAstrologyAnswers): KindAstrologyAnswers,
	}
	for _, s := range signs {
		m[string(s)] = s
	}
	return m
}()

// AllKinds returns every known kind. The fetch strategy table is checked
// against this list at construction time.
func AllKinds() []Kind {
	out := make([]Kind, 0, len(signs)+2)
	out = append(out, KindSkywatch, KindAstrologyAnswers)
	out = append(out, signs...)
	return out
}

func (k Kind) String() string { return string(k) }

// IsSign reports whether k is one of the twelve zodiac signs
// (the slug-lookup kinds).
func (k Kind) IsSign() bool {
	switch k {
	case KindSkywatch, KindAstrologyAnswers:
		return false
	}
	_, ok := kindsByName[string(k)]
	return ok
}

// KindFromName resolves an exact canonical name, as found in job keys.
func KindFromName(name string) (Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

// ParseKind normalizes raw command text into a Kind:
//
//	"sky..."            -> Skywatch
//	"aa" or "astro..."  -> AstrologyAnswers
//	otherwise the first three letters must match a zodiac sign.
func ParseKind(raw string) (Kind, error) {
	low := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(low, "sky"):
		return KindSkywatch, nil
	case low == "aa" || strings.HasPrefix(low, "astro"):
		return KindAstrologyAnswers, nil
	}
	if len(low) >= 3 {
		if k, ok := signAbbrevs[low[:3]]; ok {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
}
