package ipinfolib

// partition is a split of requested addresses. Lists contain normalized
// addresses, deduplicated, in order of their first appearance.
type partition struct {
	cached   []string
	uncached []string
	bogons   []string

	// raw requested value -> normalized address
	aliases map[string]string

	// raw requested value -> error
	invalid map[string]error
}

func (p *partition) total() int {
	return len(p.cached) + len(p.uncached) + len(p.bogons)
}

// cache.Contains is used here so partitioning does not affect recency:
// entries are promoted only when they are actually read.
func partitionAddresses(ips []string, cache *Cache) *partition {
	rv := &partition{
		aliases: make(map[string]string, len(ips)),
		invalid: map[string]error{},
	}
	seen := make(map[string]struct{}, len(ips))

	for _, raw := range ips {
		if _, ok := rv.aliases[raw]; ok {
			continue
		}

		if _, ok := rv.invalid[raw]; ok {
			continue
		}

		addr, err := NormalizeAddress(raw)
		if err != nil {
			rv.invalid[raw] = err

			continue
		}

		normalized := addr.String()
		rv.aliases[raw] = normalized

		if _, ok := seen[normalized]; ok {
			continue
		}

		seen[normalized] = struct{}{}

		switch {
		case IsBogon(addr):
			rv.bogons = append(rv.bogons, normalized)
		case cache.Contains(normalized):
			rv.cached = append(rv.cached, normalized)
		default:
			rv.uncached = append(rv.uncached, normalized)
		}
	}

	return rv
}

func splitChunks(ips []string, size int) [][]string {
	if len(ips) == 0 {
		return nil
	}

	rv := make([][]string, 0, (len(ips)+size-1)/size)

	for len(ips) > size {
		rv = append(rv, ips[:size:size])
		ips = ips[size:]
	}

	return append(rv, ips)
}
