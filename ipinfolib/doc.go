// This package provides a client of IPinfo API which resolves IP
// addresses into geolocation, network and organization details.
//
// ipinfolib is a core of the ipinfo project. The rest of the
// application is an example on how to use this library: how to read
// configuration, how to log events, how to expose a client via HTTP.
//
// Client is a main entity of the ipinfolib. It keeps an LRU cache of
// resolved addresses and goes to remote API only for addresses which
// are not cached. Those are sent in batches, at most 1000 addresses per
// request. Each batch is stored in cache only when it is fully
// processed.
//
// Lookups never fail because of a single address. Result of a batch
// lookup has an entry for each requested address: either Result or an
// error. Only if nothing can be done (no addresses, no token, client is
// shutdown), a lookup returns a top-level error.
//
// Bogon addresses (private, loopback, reserved etc) are never sent to
// remote API; they are resolved locally.
//
// Each Result is enriched with reference data: country name, flag,
// currency, continent and EU membership. Please see refdata package for
// details.
package ipinfolib
