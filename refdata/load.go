package refdata

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/qri-io/jsonschema"
	"github.com/spf13/afero"
)

var (
	// ErrUnreadable is returned if a custom file cannot be read.
	ErrUnreadable = errors.New("file is unreadable")

	// ErrMalformed is returned if a file is not a valid JSON or its
	// shape does not match an expected one.
	ErrMalformed = errors.New("file is malformed")

	// ErrLanguageConflict is returned if both language of country names
	// and custom file with country names are requested.
	ErrLanguageConflict = errors.New("language cannot be used with a custom countries file")
)

//go:embed data/*.json
var bundledFiles embed.FS

const (
	bundledCountries  = "data/countries.json"
	bundledEU         = "data/eu.json"
	bundledFlags      = "data/flags.json"
	bundledCurrencies = "data/currencies.json"
	bundledContinents = "data/continents.json"
)

// LoadError is returned if a reference file cannot be used.
type LoadError struct {
	Path string
	Err  error
}

func (l *LoadError) Error() string {
	return fmt.Sprintf("cannot load reference data from %s: %v", l.Path, l.Err)
}

func (l *LoadError) Unwrap() error {
	return l.Err
}

// Paths defines custom files which are used instead of bundled ones.
// Empty path means bundled file. A custom file replaces a bundled one
// completely, there is no merge between them.
type Paths struct {
	Countries  string `json:"countries"`
	EU         string `json:"eu"`
	Flags      string `json:"flags"`
	Currencies string `json:"currencies"`
	Continents string `json:"continents"`
}

// Options of the dataset.
type Options struct {
	// Fs is a filesystem to read custom files from. If nil, OS
	// filesystem is used.
	Fs afero.Fs

	Paths Paths

	// Language is ISO 639-3 code of the language for country names,
	// like 'deu' or 'fra'. Empty value means bundled english names.
	Language string
}

// Load reads the dataset. Each call produces an independent Store.
func Load(opts Options) (*Store, error) {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	if opts.Language != "" && opts.Paths.Countries != "" {
		return nil, &LoadError{Path: opts.Paths.Countries, Err: ErrLanguageConflict}
	}

	countries := map[string]string{}
	eu := []string{}
	flags := map[string]Flag{}
	currencies := map[string]Currency{}
	continents := map[string]Continent{}

	if opts.Language == "" {
		if err := loadFile(fs, opts.Paths.Countries, bundledCountries, schemaCountries, &countries); err != nil {
			return nil, err
		}
	} else {
		translated, err := translatedCountryNames(opts.Language)
		if err != nil {
			return nil, &LoadError{Path: "language:" + opts.Language, Err: err}
		}

		countries = translated
	}

	if err := loadFile(fs, opts.Paths.EU, bundledEU, schemaEU, &eu); err != nil {
		return nil, err
	}

	if err := loadFile(fs, opts.Paths.Flags, bundledFlags, schemaFlags, &flags); err != nil {
		return nil, err
	}

	if err := loadFile(fs, opts.Paths.Currencies, bundledCurrencies, schemaCurrencies, &currencies); err != nil {
		return nil, err
	}

	if err := loadFile(fs, opts.Paths.Continents, bundledContinents, schemaContinents, &continents); err != nil {
		return nil, err
	}

	rv := &Store{
		countries:  normalizeKeys(countries),
		eu:         make(map[string]struct{}, len(eu)),
		flags:      normalizeKeys(flags),
		currencies: normalizeKeys(currencies),
		continents: normalizeKeys(continents),
	}

	for _, v := range eu {
		rv.eu[NormalizeCode(v)] = struct{}{}
	}

	return rv, nil
}

// Default returns a Store populated with bundled data only.
func Default() *Store {
	store, err := Load(Options{Fs: afero.NewMemMapFs()})
	if err != nil {
		panic(err)
	}

	return store
}

func loadFile(fs afero.Fs, path, bundledName string, schema *jsonschema.Schema, target interface{}) error {
	var (
		data []byte
		err  error
	)

	if path == "" {
		path = "bundled:" + bundledName
		data, err = bundledFiles.ReadFile(bundledName)
	} else {
		data, err = afero.ReadFile(fs, path)
	}

	if err != nil {
		return &LoadError{Path: path, Err: fmt.Errorf("%w: %v", ErrUnreadable, err)}
	}

	keyErrors, err := schema.ValidateBytes(context.Background(), data)
	if err != nil {
		return &LoadError{Path: path, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}

	if len(keyErrors) > 0 {
		return &LoadError{Path: path, Err: fmt.Errorf("%w: %v", ErrMalformed, keyErrors[0])}
	}

	if err := json.Unmarshal(data, target); err != nil {
		return &LoadError{Path: path, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}

	return nil
}

func normalizeKeys[T any](data map[string]T) map[string]T {
	rv := make(map[string]T, len(data))

	for k, v := range data {
		if code := NormalizeCode(k); code != "" {
			rv[code] = v
		}
	}

	return rv
}
