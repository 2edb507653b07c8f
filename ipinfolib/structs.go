package ipinfolib

import "github.com/9seconds/ipinfo/refdata"

// Result is a details for a single IP address. All fields are optional:
// empty string or nil pointer means that remote API has no such data or
// that this data is not applicable.
//
// Results are shared between callers and cache so they must not be
// modified.
type Result struct {
	IP       string   `json:"ip"`
	Hostname string   `json:"hostname,omitempty"`
	Bogon    bool     `json:"bogon,omitempty"`
	Anycast  bool     `json:"anycast,omitempty"`
	City     string   `json:"city,omitempty"`
	Region   string   `json:"region,omitempty"`
	Country  string   `json:"country,omitempty"`
	Location string   `json:"loc,omitempty"`
	Org      string   `json:"org,omitempty"`
	Postal   string   `json:"postal,omitempty"`
	Timezone string   `json:"timezone,omitempty"`
	ASN      *ASN     `json:"asn,omitempty"`
	Company  *Company `json:"company,omitempty"`
	Carrier  *Carrier `json:"carrier,omitempty"`
	Privacy  *Privacy `json:"privacy,omitempty"`
	Abuse    *Abuse   `json:"abuse,omitempty"`
	Domains  *Domains `json:"domains,omitempty"`

	// Parsed from Location.
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	// Enrichment from reference data.
	CountryName     string             `json:"country_name,omitempty"`
	IsEU            *bool              `json:"is_eu,omitempty"`
	CountryFlag     *refdata.Flag      `json:"country_flag,omitempty"`
	CountryFlagURL  string             `json:"country_flag_url,omitempty"`
	CountryCurrency *refdata.Currency  `json:"country_currency,omitempty"`
	Continent       *refdata.Continent `json:"continent,omitempty"`
}

type ASN struct {
	ASN    string `json:"asn"`
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Route  string `json:"route"`
	Type   string `json:"type"`
}

type Company struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Type   string `json:"type"`
}

type Carrier struct {
	Name string `json:"name"`
	MCC  string `json:"mcc"`
	MNC  string `json:"mnc"`
}

type Privacy struct {
	VPN     bool   `json:"vpn"`
	Proxy   bool   `json:"proxy"`
	Tor     bool   `json:"tor"`
	Relay   bool   `json:"relay"`
	Hosting bool   `json:"hosting"`
	Service string `json:"service"`
}

type Abuse struct {
	Address string `json:"address"`
	Country string `json:"country"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Network string `json:"network"`
	Phone   string `json:"phone"`
}

type Domains struct {
	IP      string   `json:"ip"`
	Total   uint64   `json:"total"`
	Domains []string `json:"domains"`
}

// BatchItem is an outcome of the lookup for a single requested address.
// Exactly one of Result and Err is set.
type BatchItem struct {
	Result *Result
	Err    error
}

// OK tells if address was resolved.
func (b BatchItem) OK() bool {
	return b.Err == nil && b.Result != nil
}

func (b BatchItem) MarshalJSON() ([]byte, error) {
	if b.Err == nil {
		return json.Marshal(b.Result)
	}

	value := jsonHTTPError{}
	value.Error.Message = b.Err.Error()
	value.Error.Kind = ErrorKind(b.Err)

	return json.Marshal(&value)
}

// BatchResults maps every requested address, in a form it was requested,
// to its outcome. Duplicates and different spellings of the same address
// share the same Result.
type BatchResults map[string]BatchItem
