// ipinfo is a command line tool and a small HTTP service which return
// details of IP addresses: location, organization, privacy flags and
// so on.
//
// The tool is organized into 3 logical parts:
//
// # Ipinfolib
//
// ipinfolib is a main package of the application. It contains Client
// which partitions a set of addresses into cached, bogon and unknown
// ones, fetches unknown addresses from remote API by chunks and enriches
// results with reference data. It has its own HTTP API as well.
//
// # Refdata
//
// This package has bundled reference data: country names, EU
// membership, flags, currencies and continents. Each file can be
// replaced with a custom one.
//
// # Ipinfo
//
// A main package itself is an example of how to wire ipinfolib. It
// provides commands to look addresses up, to build a map and to run
// HTTP server with metrics.
package main
