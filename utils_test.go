package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/9seconds/ipinfo/ipinfolib"
)

type RouterTestSuite struct {
	suite.Suite

	conf   *config
	logs   *bytes.Buffer
	client *ipinfolib.Client
}

func (suite *RouterTestSuite) SetupTest() {
	suite.conf = &config{}
	suite.logs = &bytes.Buffer{}

	client, err := makeClient(suite.conf, zerolog.New(io.Discard))
	suite.Require().NoError(err)

	suite.client = client
}

func (suite *RouterTestSuite) TearDownTest() {
	suite.client.Shutdown()
}

func (suite *RouterTestSuite) Do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()

	makeRouter(suite.conf, suite.client, zerolog.New(suite.logs)).ServeHTTP(rec, req)

	return rec
}

func (suite *RouterTestSuite) TestLookup() {
	rec := suite.Do(httptest.NewRequest(http.MethodGet, "/10.0.0.1", nil))

	suite.Equal(http.StatusOK, rec.Code)
	suite.JSONEq(`{"result": {"ip": "10.0.0.1", "bogon": true}}`, rec.Body.String())
	suite.Contains(suite.logs.String(), `"event_name":"http"`)
	suite.Contains(suite.logs.String(), `"status":200`)
}

func (suite *RouterTestSuite) TestMetrics() {
	suite.Do(httptest.NewRequest(http.MethodGet, "/10.0.0.1", nil))

	rec := suite.Do(httptest.NewRequest(http.MethodGet, "/metrics", nil))

	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), "ipinfo_")
}

func (suite *RouterTestSuite) TestBasicAuth() {
	suite.conf.BasicAuth = configBasicAuth{User: "user", Password: "password"}

	rec := suite.Do(httptest.NewRequest(http.MethodGet, "/10.0.0.1", nil))

	suite.Equal(http.StatusUnauthorized, rec.Code)
	suite.NotEmpty(rec.Header().Get("WWW-Authenticate"))

	req := httptest.NewRequest(http.MethodGet, "/10.0.0.1", nil)

	req.SetBasicAuth("user", "wrong")
	suite.Equal(http.StatusUnauthorized, suite.Do(req).Code)

	req = httptest.NewRequest(http.MethodGet, "/10.0.0.1", nil)

	req.SetBasicAuth("user", "password")
	suite.Equal(http.StatusOK, suite.Do(req).Code)
}

func TestRouter(t *testing.T) {
	suite.Run(t, &RouterTestSuite{})
}

func TestPrintSummary(t *testing.T) {
	buf := &bytes.Buffer{}

	printSummary(buf, 12345, 2, ipinfolib.UsageSnapshot{
		CacheHits:        1000,
		FetchedAddresses: 11343,
	}, 1500*time.Millisecond)

	assert.Equal(t, "12,345 addresses (2 failed), 1,000 cache hits, 11,343 fetched in 1.5s\n", buf.String())
}

func TestPrintJSON(t *testing.T) {
	buf := &bytes.Buffer{}

	assert.NoError(t, printJSON(buf, &ipinfolib.Result{IP: "10.0.0.1", Bogon: true}))
	assert.JSONEq(t, `{"ip": "10.0.0.1", "bogon": true}`, buf.String())
	assert.Contains(t, buf.String(), "\n  ")
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()

	assert.NoError(t, loadDotenv(filepath.Join(dir, ".env")))

	path := filepath.Join(dir, "ok.env")

	assert.NoError(t, os.WriteFile(path, []byte("IPINFO_TEST_DOTENV=value\n"), 0o600))
	assert.NoError(t, loadDotenv(path))
	assert.Equal(t, "value", os.Getenv("IPINFO_TEST_DOTENV"))

	os.Unsetenv("IPINFO_TEST_DOTENV")

	assert.Error(t, loadDotenv(dir))
}
