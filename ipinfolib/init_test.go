package ipinfolib_test

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/9seconds/ipinfo/ipinfolib"
)

const testBatchURL = "https://ipinfo.io/batch"

type LoggerMock struct {
	mock.Mock
}

func (m *LoggerMock) ChunkFetched(size int, elapsed time.Duration) {
	m.Called(size, elapsed)
}

func (m *LoggerMock) ChunkFailed(size int, err error) {
	m.Called(size, err)
}

func (m *LoggerMock) AddressFailed(ip string, err error) {
	m.Called(ip, err)
}

type HTTPClientMock struct {
	mock.Mock
}

func (m *HTTPClientMock) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)

	resp, _ := args.Get(0).(*http.Response)

	return resp, args.Error(1)
}

func payloadFor(ip, country string) string {
	return `{"ip": "` + ip + `", "city": "Mountain View", "region": "California", ` +
		`"country": "` + country + `", "loc": "37.4056,-122.0775", ` +
		`"org": "AS15169 Google LLC", "postal": "94043", "timezone": "America/Los_Angeles"}`
}

// MockedClientTestSuite activates httpmock for the whole suite and
// builds a fresh client for each test.
type MockedClientTestSuite struct {
	suite.Suite

	client  *ipinfolib.Client
	logMock *LoggerMock

	requestsMutex sync.Mutex
	requests      []*http.Request
}

func (suite *MockedClientTestSuite) SetupSuite() {
	httpmock.Activate()
}

func (suite *MockedClientTestSuite) TearDownSuite() {
	httpmock.DeactivateAndReset()
}

func (suite *MockedClientTestSuite) SetupTest() {
	httpmock.Reset()
	httpmock.ZeroCallCounters()

	suite.requests = nil
	suite.logMock = &LoggerMock{}

	suite.logMock.On("ChunkFetched", mock.Anything, mock.Anything).Maybe()
	suite.logMock.On("ChunkFailed", mock.Anything, mock.Anything).Maybe()
	suite.logMock.On("AddressFailed", mock.Anything, mock.Anything).Maybe()

	suite.client = suite.NewClient(ipinfolib.ClientOpts{})
}

func (suite *MockedClientTestSuite) TearDownTest() {
	suite.client.Shutdown()
	suite.logMock.AssertExpectations(suite.T())
}

// NewClient builds a client with test defaults: a token, a logger mock
// and a rate limiter which does not slow tests down.
func (suite *MockedClientTestSuite) NewClient(opts ipinfolib.ClientOpts) *ipinfolib.Client {
	if opts.Token == "" {
		opts.Token = "token"
	}

	if opts.Logger == nil {
		opts.Logger = suite.logMock
	}

	if opts.RateLimitInterval == 0 {
		opts.RateLimitInterval = time.Millisecond
	}

	if opts.RateLimitBurst == 0 {
		opts.RateLimitBurst = 100
	}

	client, err := ipinfolib.NewClient(opts)
	suite.Require().NoError(err)

	return client
}

// BatchResponder answers with payloads of requested addresses. Addresses
// without payload are absent in response.
func (suite *MockedClientTestSuite) BatchResponder(payloads map[string]string) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		suite.requestsMutex.Lock()
		suite.requests = append(suite.requests, req)
		suite.requestsMutex.Unlock()

		ips := []string{}

		if err := json.NewDecoder(req.Body).Decode(&ips); err != nil {
			return httpmock.NewStringResponse(http.StatusBadRequest, `{"error": "bad body"}`), nil
		}

		parts := make([]string, 0, len(ips))

		for _, ip := range ips {
			if payload, ok := payloads[ip]; ok {
				parts = append(parts, strconv.Quote(ip)+": "+payload)
			}
		}

		return httpmock.NewStringResponse(http.StatusOK, "{"+strings.Join(parts, ", ")+"}"), nil
	}
}

func (suite *MockedClientTestSuite) Requests() []*http.Request {
	suite.requestsMutex.Lock()
	defer suite.requestsMutex.Unlock()

	return append([]*http.Request{}, suite.requests...)
}

func decodeJSON(resp *http.Response, target interface{}) error {
	return json.NewDecoder(resp.Body).Decode(target)
}
