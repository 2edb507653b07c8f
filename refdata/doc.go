// Package refdata contains static reference data which is used to
// enrich results of IP lookups: country names, membership in European
// Union, flags, currencies and continents.
//
// The dataset is bundled into the binary. Any of its five files can be
// replaced with a custom one; in that case the custom file is used as
// is, without merging with a bundled one. So if your custom file of
// country names has no entry for US, there is no name for US at all.
//
// Store is loaded once and never mutated afterwards so it is safe to
// share it between goroutines. Different stores can coexist, for
// example, if you want to have country names in different languages.
package refdata
