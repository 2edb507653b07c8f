package refdata

import (
	"errors"
	"strings"
	"sync"

	"github.com/pariz/gountries"
)

// ErrUnknownLanguage is returned if there are no translations of country
// names for the requested language.
var ErrUnknownLanguage = errors.New("unknown language")

var (
	countriesQueryOnce sync.Once
	countriesQuery     *gountries.Query
)

func getCountriesQuery() *gountries.Query {
	countriesQueryOnce.Do(func() {
		countriesQuery = gountries.New()
	})

	return countriesQuery
}

// translatedCountryNames accepts ISO 639-3 code in any case. Translations
// are keyed by upper case codes like DEU.
func translatedCountryNames(language string) (map[string]string, error) {
	language = strings.ToUpper(strings.TrimSpace(language))
	query := getCountriesQuery()
	rv := make(map[string]string, len(query.Countries))

	for code, country := range query.Countries {
		// english names are not a part of translations
		if language == "ENG" {
			rv[code] = country.Name.Common

			continue
		}

		if translation, ok := country.Translations[language]; ok && translation.Common != "" {
			rv[code] = translation.Common
		}
	}

	if len(rv) == 0 {
		return nil, ErrUnknownLanguage
	}

	return rv, nil
}
