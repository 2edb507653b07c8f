package ipinfolib

import (
	"strconv"
	"strings"

	"github.com/9seconds/ipinfo/refdata"
)

const countryFlagURLPrefix = "https://cdn.ipinfo.io/static/images/countries-flags/"

type enricher struct {
	store *refdata.Store
}

// Enrich attaches reference data to the result. Enrichment fields which
// came from remote payload are discarded: reference data is the only
// source of them.
func (e enricher) Enrich(result *Result) {
	result.CountryName = ""
	result.IsEU = nil
	result.CountryFlag = nil
	result.CountryFlagURL = ""
	result.CountryCurrency = nil
	result.Continent = nil
	result.Latitude, result.Longitude = parseLocation(result.Location)

	code := refdata.NormalizeCode(result.Country)
	if code == "" {
		return
	}

	if name, ok := e.store.CountryName(code); ok {
		result.CountryName = name
	}

	if isEU, ok := e.store.IsEU(code); ok {
		result.IsEU = &isEU
	}

	if flag, ok := e.store.Flag(code); ok {
		result.CountryFlag = &flag
	}

	if currency, ok := e.store.Currency(code); ok {
		result.CountryCurrency = &currency
	}

	if continent, ok := e.store.Continent(code); ok {
		result.Continent = &continent
	}

	result.CountryFlagURL = countryFlagURLPrefix + code + ".svg"
}

// parseLocation parses "lat,lon" string. Both values are nil if string
// is not a valid pair of coordinates.
func parseLocation(location string) (*float64, *float64) {
	latStr, lonStr, ok := strings.Cut(location, ",")
	if !ok {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, nil
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil || lon < -180 || lon > 180 {
		return nil, nil
	}

	return &lat, &lon
}

// commitChunk enriches successful items of a fetched chunk and stores
// them in cache at once. Nothing is stored until every item of the chunk
// is processed.
func commitChunk(items map[string]BatchItem, enrich enricher, cache *Cache) {
	fresh := make(map[string]*Result, len(items))

	for ip, item := range items {
		if item.Err != nil || item.Result == nil {
			continue
		}

		enrich.Enrich(item.Result)
		fresh[ip] = item.Result
	}

	cache.PutAll(fresh)
}

// assembleResults maps every requested value to an outcome of its
// normalized address. resolved is keyed by normalized addresses.
func assembleResults(p *partition, resolved map[string]BatchItem) BatchResults {
	rv := make(BatchResults, len(p.aliases)+len(p.invalid))

	for raw, err := range p.invalid {
		rv[raw] = BatchItem{Err: err}
	}

	for raw, normalized := range p.aliases {
		item, ok := resolved[normalized]
		if !ok {
			item = BatchItem{Err: ErrNoData}
		}

		rv[raw] = item
	}

	return rv
}
