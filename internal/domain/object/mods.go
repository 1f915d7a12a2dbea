package object

import (
	"fmt"
	"strings"
)

// Mods is the immutable set of active play modifiers.
type Mods uint32

const (
	ModHidden Mods = 1 << iota
	ModFlashlight
	ModHardRock
	ModDoubleTime
	ModHalfTime
	ModEasy
	ModNoFail

	ModNone Mods = 0
)

var modNames = []struct {
	mod     Mods
	acronym string
	name    string
}{
	{ModHidden, "HD", "hidden"},
	{ModFlashlight, "FL", "flashlight"},
	{ModHardRock, "HR", "hardrock"},
	{ModDoubleTime, "DT", "doubletime"},
	{ModHalfTime, "HT", "halftime"},
	{ModEasy, "EZ", "easy"},
	{ModNoFail, "NF", "nofail"},
}

// Has reports whether every bit of m2 is set in m.
func (m Mods) Has(m2 Mods) bool { return m&m2 == m2 && m2 != 0 }

// String renders the acronyms in a fixed order, e.g. "HDFL".
func (m Mods) String() string {
	if m == ModNone {
		return "NM"
	}
	var b strings.Builder
	for _, n := range modNames {
		if m.Has(n.mod) {
			b.WriteString(n.acronym)
		}
	}
	return b.String()
}

// Acronyms returns the active modifiers as a list of acronyms.
func (m Mods) Acronyms() []string {
	out := make([]string, 0, len(modNames))
	for _, n := range modNames {
		if m.Has(n.mod) {
			out = append(out, n.acronym)
		}
	}
	return out
}

// ParseMods accepts a comma or space separated list of acronyms or names
// ("HD,FL", "hidden flashlight") as well as the run-together form "HDFL".
// "NM" and the empty string yield ModNone.
func ParseMods(s string) (Mods, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '+' })
	return ParseModList(fields)
}

// ParseModList is ParseMods over pre-split tokens.
func ParseModList(tokens []string) (Mods, error) {
	var m Mods
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" || strings.EqualFold(tok, "NM") {
			continue
		}
		mod, ok := lookupMod(tok)
		if !ok {
			mod, ok = splitAcronyms(tok)
		}
		if !ok {
			return ModNone, fmt.Errorf("%w: %q", ErrUnknownMod, tok)
		}
		m |= mod
	}
	return m, nil
}

func lookupMod(tok string) (Mods, bool) {
	for _, n := range modNames {
		if strings.EqualFold(tok, n.acronym) || strings.EqualFold(tok, n.name) {
			return n.mod, true
		}
	}
	return ModNone, false
}

// splitAcronyms parses run-together acronyms such as "HDFL".
func splitAcronyms(tok string) (Mods, bool) {
	if len(tok)%2 != 0 {
		return ModNone, false
	}
	var m Mods
	for i := 0; i < len(tok); i += 2 {
		part := tok[i : i+2]
		if strings.EqualFold(part, "NM") {
			continue
		}
		found := false
		for _, n := range modNames {
			if strings.EqualFold(part, n.acronym) {
				m |= n.mod
				found = true
				break
			}
		}
		if !found {
			return ModNone, false
		}
	}
	return m, true
}

// MarshalText renders the acronym form so documents carry "HDFL".
func (m Mods) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText accepts anything ParseMods does.
func (m *Mods) UnmarshalText(text []byte) error {
	parsed, err := ParseMods(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
