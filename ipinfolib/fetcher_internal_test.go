package ipinfolib

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DecodePayloadTestSuite struct {
	suite.Suite
}

func (suite *DecodePayloadTestSuite) TestFull() {
	result, err := decodePayload([]byte(`{
      "ip": "8.8.8.8",
      "hostname": "dns.google",
      "anycast": true,
      "city": "Mountain View",
      "region": "California",
      "country": "US",
      "loc": "37.4056,-122.0775",
      "org": "AS15169 Google LLC",
      "postal": "94043",
      "timezone": "America/Los_Angeles",
      "asn": {"asn": "AS15169", "name": "Google LLC", "domain": "google.com", "route": "8.8.8.0/24", "type": "hosting"},
      "company": {"name": "Google LLC", "domain": "google.com", "type": "hosting"},
      "privacy": {"vpn": false, "proxy": false, "tor": false, "relay": false, "hosting": true, "service": ""},
      "abuse": {"address": "US, CA", "country": "US", "email": "network-abuse@google.com", "name": "Abuse", "network": "8.8.8.0/24", "phone": "+1-650-253-0000"},
      "domains": {"ip": "8.8.8.8", "total": 11606, "domains": ["41.cn", "authrock.com"]}
    }`))

	suite.NoError(err)
	suite.Equal("8.8.8.8", result.IP)
	suite.Equal("dns.google", result.Hostname)
	suite.True(result.Anycast)
	suite.Equal("37.4056,-122.0775", result.Location)
	suite.Equal("AS15169", result.ASN.ASN)
	suite.Equal("hosting", result.Company.Type)
	suite.True(result.Privacy.Hosting)
	suite.Equal("network-abuse@google.com", result.Abuse.Email)
	suite.EqualValues(11606, result.Domains.Total)
	suite.Len(result.Domains.Domains, 2)
	suite.Nil(result.Carrier)
}

func (suite *DecodePayloadTestSuite) TestSparse() {
	result, err := decodePayload([]byte(`{"ip": "1.2.3.4", "bogon": true}`))

	suite.NoError(err)
	suite.True(result.Bogon)
	suite.Empty(result.Country)
	suite.Nil(result.ASN)
}

func (suite *DecodePayloadTestSuite) TestErrorString() {
	_, err := decodePayload([]byte(`{"error": "Wrong ip"}`))

	remoteErr := &RemoteError{}

	suite.True(errors.As(err, &remoteErr))
	suite.Empty(remoteErr.Title)
	suite.Equal("Wrong ip", remoteErr.Message)
	suite.EqualError(err, "remote error: Wrong ip")
}

func (suite *DecodePayloadTestSuite) TestErrorObject() {
	_, err := decodePayload([]byte(`{"error": {"title": "Wrong ip", "message": "Please provide a valid IP address"}}`))

	remoteErr := &RemoteError{}

	suite.True(errors.As(err, &remoteErr))
	suite.Equal("Wrong ip", remoteErr.Title)
	suite.Equal("Please provide a valid IP address", remoteErr.Message)
}

func (suite *DecodePayloadTestSuite) TestNullError() {
	result, err := decodePayload([]byte(`{"ip": "1.2.3.4", "error": null}`))

	suite.NoError(err)
	suite.Equal("1.2.3.4", result.IP)
}

func (suite *DecodePayloadTestSuite) TestNotObject() {
	for _, v := range []string{`"US"`, `[]`, `1`, ``} {
		_, err := decodePayload([]byte(v))

		remoteErr := &RemoteError{}

		suite.True(errors.As(err, &remoteErr), v)
	}
}

func TestDecodePayload(t *testing.T) {
	suite.Run(t, &DecodePayloadTestSuite{})
}
