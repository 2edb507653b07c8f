package refdata

import "strings"

// Flag is an emoji flag of the country with its unicode code points.
type Flag struct {
	Emoji   string `json:"emoji"`
	Unicode string `json:"unicode"`
}

// Currency is a currency used in the country.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
}

// Continent describes a continent the country belongs to.
type Continent struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Store is an immutable set of mappings used to enrich lookup results.
// Every mapping is keyed by ISO3166 alpha-2 code of the country.
//
// Store is safe for concurrent use: it is never mutated after Load has
// returned.
type Store struct {
	countries  map[string]string
	eu         map[string]struct{}
	flags      map[string]Flag
	currencies map[string]Currency
	continents map[string]Continent
}

// CountryName returns a name of the country.
func (s *Store) CountryName(code string) (string, bool) {
	value, ok := s.countries[NormalizeCode(code)]

	return value, ok
}

// IsEU tells if the country is a member of European Union. The second
// value is false only if code is not a 2-letter code at all.
func (s *Store) IsEU(code string) (bool, bool) {
	code = NormalizeCode(code)
	if code == "" {
		return false, false
	}

	_, ok := s.eu[code]

	return ok, true
}

// Flag returns a flag of the country.
func (s *Store) Flag(code string) (Flag, bool) {
	value, ok := s.flags[NormalizeCode(code)]

	return value, ok
}

// Currency returns a currency of the country.
func (s *Store) Currency(code string) (Currency, bool) {
	value, ok := s.currencies[NormalizeCode(code)]

	return value, ok
}

// Continent returns a continent of the country.
func (s *Store) Continent(code string) (Continent, bool) {
	value, ok := s.continents[NormalizeCode(code)]

	return value, ok
}

// NormalizeCode returns an uppercased 2-letter code or empty string if
// given value is not a 2-letter code.
func NormalizeCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))

	if len(code) != 2 || code[0] < 'A' || code[0] > 'Z' || code[1] < 'A' || code[1] > 'Z' {
		return ""
	}

	return code
}
