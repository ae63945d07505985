package zpay32

import (
	"sort"
	"sync"

	"github.com/nova-carnivore/bolt11/chaincfg"
)

var (
	prefixesOnce   sync.Once
	prefixesSorted []string
	prefixToParams map[string]*chaincfg.Params
)

// knownPrefixesByLength returns every known network's bech32 prefix,
// longest first, so that a prefix which is itself a prefix of another
// (e.g. "bc" of "bcrt") is tried only after the longer candidate.
func knownPrefixesByLength() []string {
	prefixesOnce.Do(func() {
		prefixToParams = make(map[string]*chaincfg.Params, len(chaincfg.KnownNetworks))
		prefixesSorted = make([]string, 0, len(chaincfg.KnownNetworks))
		for _, net := range chaincfg.KnownNetworks {
			prefixToParams[net.Bech32HRPSegwit] = net
			prefixesSorted = append(prefixesSorted, net.Bech32HRPSegwit)
		}
		sort.Slice(prefixesSorted, func(i, j int) bool {
			return len(prefixesSorted[i]) > len(prefixesSorted[j])
		})
	})
	return prefixesSorted
}

// networkByPrefix resolves a bech32 network prefix to its Params.
func networkByPrefix(prefix string) (*chaincfg.Params, bool) {
	knownPrefixesByLength() // ensure the map is populated
	net, ok := prefixToParams[prefix]
	return net, ok
}
