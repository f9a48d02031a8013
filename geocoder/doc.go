/*
Package geocoder resolves free-text transit incident locations to coordinates
using a reference stop registry.

Incident reports name locations inconsistently ("KENNEDY STN", "Kennedy
Station", "BATHURST AND WILSON") while the registry carries canonical stop
names. The resolver bridges the two with a normalizer and an ordered strategy
chain over three prebuilt indexes.

# Basic Usage

Build the index once at startup, then share it read-only:

	registry, err := stops.Load("stops.txt")
	if err != nil {
	    log.Fatal(err)
	}
	idx := geocoder.BuildIndex(registry)
	resolver := geocoder.NewResolver(idx)

	res := resolver.Resolve("KENNEDY STN")
	if res.Matched {
	    fmt.Println(res.Latitude, res.Longitude, res.Method)
	}

# Strategy Chain

Resolve applies strategies in strict priority order, first success wins:

 1. exact - normalized input found verbatim in the exact index
 2. station - suffix windows around the token "station"
 3. intersection - unordered pair of leading street tokens around "at"
 4. partial - best token-set overlap against exact keys, score >= threshold
 5. failed - terminal outcome, not an error

Every Resolution reports which outcome fired; Summary accumulates the
per-method counts batch geocoding must emit.

# Performance

BuildIndex is O(number of stops) and runs once. A built index never changes,
so concurrent Resolve calls need no locking. For large registries the index
can be cached on disk with SerializeIndex/DeserializeIndex and reloaded
without re-parsing stops.txt.
*/
package geocoder
