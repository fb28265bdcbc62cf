// Package source loads topologies and region data from local files or
// HTTP URLs.
//
// A [Client] combines the cache backends of [cache], retry with backoff
// from [httputil] and structured logging. Remote responses are cached by
// URL; local files are always read fresh.
//
//	c := source.NewClient(source.WithCache(fc, 24*time.Hour))
//	res, err := c.Load(ctx, source.Request{
//	    Topology: "https://example.com/usa.topo.json",
//	    Data:     "unemployment.csv",
//	    DataType: source.CSV,
//	})
//
// Region data is either a JSON object keyed by region id, or a list of
// rows (a JSON array or CSV with a header) each carrying an "id" column;
// rows are re-keyed by that id.
//
// [cache]: github.com/matzehuels/mapsvg/pkg/cache
// [httputil]: github.com/matzehuels/mapsvg/pkg/httputil
package source
