package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	mserrors "github.com/matzehuels/mapsvg/pkg/errors"
	"github.com/matzehuels/mapsvg/pkg/geo/topology"
)

// Region data formats.
const (
	JSON = "json"
	CSV  = "csv"
)

// ParseRegionData decodes region data keyed by region id. dataType is
// "json" (the default) or "csv".
func ParseRegionData(data []byte, dataType string) (map[string]any, error) {
	switch strings.ToLower(dataType) {
	case "", JSON:
		return parseJSON(data)
	case CSV:
		return parseCSV(data)
	default:
		return nil, mserrors.New(mserrors.ErrCodeInvalidFormat, "unsupported data type %q (want json or csv)", dataType)
	}
}

func parseJSON(data []byte) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, mserrors.Wrap(mserrors.ErrCodeInvalidFormat, err, "decode region data")
	}
	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case []any:
		rows := make([]map[string]any, 0, len(t))
		for i, item := range t {
			row, ok := item.(map[string]any)
			if !ok {
				return nil, mserrors.New(mserrors.ErrCodeInvalidFormat, "region data row %d is not an object", i)
			}
			rows = append(rows, row)
		}
		return byID(rows)
	default:
		return nil, mserrors.New(mserrors.ErrCodeInvalidFormat, "region data must be an object or an array")
	}
}

func parseCSV(data []byte) (map[string]any, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err == io.EOF {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, mserrors.Wrap(mserrors.ErrCodeInvalidFormat, err, "read csv header")
	}
	var rows []map[string]any
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, mserrors.Wrap(mserrors.ErrCodeInvalidFormat, err, "read csv")
		}
		row := make(map[string]any, len(header))
		for i, name := range header {
			if i < len(rec) {
				row[name] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return byID(rows)
}

// byID re-keys rows by their "id" field. Later rows win.
func byID(rows []map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(rows))
	for i, row := range rows {
		id, ok := row["id"]
		if !ok {
			return nil, mserrors.New(mserrors.ErrCodeInvalidFormat, "region data row %d has no id", i)
		}
		key := idString(id)
		if key == "" {
			return nil, mserrors.New(mserrors.ErrCodeInvalidFormat, "region data row %d has an empty id", i)
		}
		out[key] = row
	}
	return out, nil
}

func idString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		b, _ := json.Marshal(t)
		return string(b)
	default:
		return ""
	}
}

// Topology fetches and decodes a TopoJSON document.
func (c *Client) Topology(ctx context.Context, loc string) (*topology.Topology, error) {
	data, err := c.Fetch(ctx, loc)
	if err != nil {
		return nil, err
	}
	return topology.Decode(data)
}

// RegionData fetches and parses a region data document.
func (c *Client) RegionData(ctx context.Context, loc, dataType string) (map[string]any, error) {
	data, err := c.Fetch(ctx, loc)
	if err != nil {
		return nil, err
	}
	return ParseRegionData(data, dataType)
}

// Request names the documents a map needs. Empty fields are skipped.
type Request struct {
	Topology string
	Data     string
	DataType string
}

// Result holds the loaded documents.
type Result struct {
	Topology *topology.Topology
	Data     map[string]any
}

// Load fetches the topology and region data concurrently. The first error
// cancels the other fetch.
func (c *Client) Load(ctx context.Context, req Request) (*Result, error) {
	var res Result
	g, ctx := errgroup.WithContext(ctx)
	if req.Topology != "" {
		g.Go(func() error {
			t, err := c.Topology(ctx, req.Topology)
			if err != nil {
				return err
			}
			res.Topology = t
			return nil
		})
	}
	if req.Data != "" {
		g.Go(func() error {
			d, err := c.RegionData(ctx, req.Data, req.DataType)
			if err != nil {
				return err
			}
			res.Data = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	c.logger.Debug("loaded sources", "topology", req.Topology, "data", req.Data)
	return &res, nil
}
