package refdata_test

import (
	"errors"
	"testing"

	"github.com/9seconds/ipinfo/refdata"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/suite"
)

type LoadTestSuite struct {
	suite.Suite

	fs afero.Fs
}

func (suite *LoadTestSuite) SetupTest() {
	suite.fs = afero.NewMemMapFs()
}

func (suite *LoadTestSuite) WriteFile(path, content string) {
	suite.NoError(afero.WriteFile(suite.fs, path, []byte(content), 0o644))
}

func (suite *LoadTestSuite) TestCustomCountriesNoMerge() {
	suite.WriteFile("/data/countries.json", `{"DE": "Deutschland", "fr": "Frankreich"}`)

	store, err := refdata.Load(refdata.Options{
		Fs: suite.fs,
		Paths: refdata.Paths{
			Countries: "/data/countries.json",
		},
	})

	suite.NoError(err)

	_, ok := store.CountryName("US")

	suite.False(ok)

	name, ok := store.CountryName("DE")

	suite.True(ok)
	suite.Equal("Deutschland", name)

	name, ok = store.CountryName("FR")

	suite.True(ok)
	suite.Equal("Frankreich", name)

	currency, ok := store.Currency("US")

	suite.True(ok)
	suite.Equal("USD", currency.Code)
}

func (suite *LoadTestSuite) TestCustomEU() {
	suite.WriteFile("/eu.json", `["US"]`)

	store, err := refdata.Load(refdata.Options{
		Fs:    suite.fs,
		Paths: refdata.Paths{EU: "/eu.json"},
	})

	suite.NoError(err)

	isEU, ok := store.IsEU("US")

	suite.True(ok)
	suite.True(isEU)

	isEU, ok = store.IsEU("DE")

	suite.True(ok)
	suite.False(isEU)
}

func (suite *LoadTestSuite) TestCustomContinents() {
	suite.WriteFile("/continents.json", `{"US": {"code": "AM", "name": "America"}}`)

	store, err := refdata.Load(refdata.Options{
		Fs:    suite.fs,
		Paths: refdata.Paths{Continents: "/continents.json"},
	})

	suite.NoError(err)

	continent, ok := store.Continent("US")

	suite.True(ok)
	suite.Equal(refdata.Continent{Code: "AM", Name: "America"}, continent)

	_, ok = store.Continent("CA")

	suite.False(ok)
}

func (suite *LoadTestSuite) TestMissingFile() {
	_, err := refdata.Load(refdata.Options{
		Fs:    suite.fs,
		Paths: refdata.Paths{Flags: "/nothing.json"},
	})

	loadErr := &refdata.LoadError{}

	suite.True(errors.As(err, &loadErr))
	suite.Equal("/nothing.json", loadErr.Path)
	suite.True(errors.Is(err, refdata.ErrUnreadable))
}

func (suite *LoadTestSuite) TestInvalidJSON() {
	suite.WriteFile("/countries.json", `{"US": `)

	_, err := refdata.Load(refdata.Options{
		Fs:    suite.fs,
		Paths: refdata.Paths{Countries: "/countries.json"},
	})

	suite.True(errors.Is(err, refdata.ErrMalformed))
}

func (suite *LoadTestSuite) TestWrongShape() {
	suite.WriteFile("/flags.json", `{"US": {"emoji": "x"}}`)

	_, err := refdata.Load(refdata.Options{
		Fs:    suite.fs,
		Paths: refdata.Paths{Flags: "/flags.json"},
	})

	suite.True(errors.Is(err, refdata.ErrMalformed))
}

func (suite *LoadTestSuite) TestWrongKeys() {
	suite.WriteFile("/currencies.json", `{"USA": {"code": "USD", "symbol": "$"}}`)

	_, err := refdata.Load(refdata.Options{
		Fs:    suite.fs,
		Paths: refdata.Paths{Currencies: "/currencies.json"},
	})

	suite.True(errors.Is(err, refdata.ErrMalformed))
}

func (suite *LoadTestSuite) TestEUIsNotAList() {
	suite.WriteFile("/eu.json", `{"DE": true}`)

	_, err := refdata.Load(refdata.Options{
		Fs:    suite.fs,
		Paths: refdata.Paths{EU: "/eu.json"},
	})

	suite.True(errors.Is(err, refdata.ErrMalformed))
}

func (suite *LoadTestSuite) TestLanguageConflict() {
	suite.WriteFile("/countries.json", `{}`)

	_, err := refdata.Load(refdata.Options{
		Fs:       suite.fs,
		Paths:    refdata.Paths{Countries: "/countries.json"},
		Language: "deu",
	})

	suite.True(errors.Is(err, refdata.ErrLanguageConflict))
}

func (suite *LoadTestSuite) TestIndependentStores() {
	suite.WriteFile("/countries.json", `{"US": "Vereinigte Staaten"}`)

	custom, err := refdata.Load(refdata.Options{
		Fs:    suite.fs,
		Paths: refdata.Paths{Countries: "/countries.json"},
	})

	suite.NoError(err)

	bundled := refdata.Default()

	name, _ := custom.CountryName("US")

	suite.Equal("Vereinigte Staaten", name)

	name, _ = bundled.CountryName("US")

	suite.Equal("United States", name)
}

func TestLoad(t *testing.T) {
	suite.Run(t, &LoadTestSuite{})
}
