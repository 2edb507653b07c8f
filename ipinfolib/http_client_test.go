package ipinfolib_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/mccutchen/go-httpbin/v2/httpbin"
	"github.com/stretchr/testify/suite"

	"github.com/9seconds/ipinfo/ipinfolib"
)

type HTTPClientTestSuite struct {
	suite.Suite

	httpbinEndpoint *httptest.Server
	c               ipinfolib.HTTPClient
}

func (suite *HTTPClientTestSuite) SetupSuite() {
	suite.httpbinEndpoint = httptest.NewServer(httpbin.New().Handler())
}

func (suite *HTTPClientTestSuite) TearDownSuite() {
	suite.httpbinEndpoint.Close()
}

func (suite *HTTPClientTestSuite) SetupTest() {
	suite.c = ipinfolib.NewHTTPClient(suite.httpbinEndpoint.Client(),
		"test",
		100*time.Millisecond,
		1,
		2,
		time.Minute,
		time.Minute)
}

func (suite *HTTPClientTestSuite) TestRateLimiter() {
	now := time.Now()
	wg := &sync.WaitGroup{}

	wg.Add(10)

	for i := 0; i < 10; i++ {
		go func() {
			defer wg.Done()

			req, _ := http.NewRequest(http.MethodGet, suite.httpbinEndpoint.URL+"/get", nil)
			resp, err := suite.c.Do(req)

			suite.NoError(err)
			suite.Equal(http.StatusOK, resp.StatusCode)
			resp.Body.Close()
		}()
	}

	wg.Wait()

	suite.True(time.Since(now) > 700*time.Millisecond)
	suite.WithinDuration(now, time.Now(), 12*100*time.Millisecond)
}

func (suite *HTTPClientTestSuite) TestUserAgent() {
	req, _ := http.NewRequest(http.MethodGet, suite.httpbinEndpoint.URL+"/user-agent", nil)
	resp, err := suite.c.Do(req)

	suite.Require().NoError(err)

	defer resp.Body.Close()

	response := struct {
		UserAgent string `json:"user-agent"`
	}{}

	suite.NoError(decodeJSON(resp, &response))
	suite.Equal("test", response.UserAgent)
}

func (suite *HTTPClientTestSuite) TestBadStatus() {
	req, _ := http.NewRequest(http.MethodGet, suite.httpbinEndpoint.URL+"/status/500", nil)
	_, err := suite.c.Do(req)

	fetchErr := &ipinfolib.FetchError{}

	suite.True(errors.As(err, &fetchErr))
	suite.Equal(http.StatusInternalServerError, fetchErr.StatusCode)
}

func (suite *HTTPClientTestSuite) TestRateLimitedStatus() {
	req, _ := http.NewRequest(http.MethodGet, suite.httpbinEndpoint.URL+"/status/429", nil)
	_, err := suite.c.Do(req)

	suite.True(errors.Is(err, ipinfolib.ErrRateLimited))
}

func (suite *HTTPClientTestSuite) TestCircuitBreakerOpens() {
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest(http.MethodGet, suite.httpbinEndpoint.URL+"/status/503", nil)
		_, err := suite.c.Do(req)

		suite.Error(err)
	}

	req, _ := http.NewRequest(http.MethodGet, suite.httpbinEndpoint.URL+"/get", nil)
	_, err := suite.c.Do(req)

	suite.True(errors.Is(err, ipinfolib.ErrCircuitBreakerOpened))
}

func (suite *HTTPClientTestSuite) TestClientErrorsKeepCircuitClosed() {
	for i := 0; i < 5; i++ {
		req, _ := http.NewRequest(http.MethodGet, suite.httpbinEndpoint.URL+"/status/403", nil)
		_, err := suite.c.Do(req)

		suite.Error(err)
	}

	req, _ := http.NewRequest(http.MethodGet, suite.httpbinEndpoint.URL+"/get", nil)
	resp, err := suite.c.Do(req)

	suite.Require().NoError(err)
	suite.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func (suite *HTTPClientTestSuite) TestCannotDial() {
	req, _ := http.NewRequest(http.MethodGet, suite.httpbinEndpoint.URL+"1"+"/status/500", nil)
	_, err := suite.c.Do(req)

	suite.Error(err)
}

func (suite *HTTPClientTestSuite) TestClosedContext() {
	ctx, cancel := context.WithCancel(context.Background())

	cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, suite.httpbinEndpoint.URL+"/get", nil)
	_, err := suite.c.Do(req)

	suite.True(errors.Is(err, context.Canceled))
}

func TestHTTPClient(t *testing.T) {
	suite.Run(t, &HTTPClientTestSuite{})
}
