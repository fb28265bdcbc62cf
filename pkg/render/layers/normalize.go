package layers

import (
	"encoding/json"
	"reflect"

	"github.com/matzehuels/mapsvg/pkg/errors"
	"github.com/matzehuels/mapsvg/pkg/render/scene"
)

// datum is one normalised array item: its generic JSON form (used for
// identity, data-info and templates) decoded alongside a typed view.
type datum[T any] struct {
	key   string
	raw   map[string]any
	value T
}

// normalize accepts any slice or array and decodes each item into T
// through its JSON form. Anything else is rejected with name in the error.
func normalize[T any](data any, name string) ([]datum[T], error) {
	if data == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s must be an array", name)
	}
	rv := reflect.ValueOf(data)
	if k := rv.Kind(); k != reflect.Slice && k != reflect.Array {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s must be an array", name)
	}

	out := make([]datum[T], 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		b, err := json.Marshal(rv.Index(i).Interface())
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s[%d]", name, i)
		}
		var d datum[T]
		if err := json.Unmarshal(b, &d.raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s[%d] must be an object", name, i)
		}
		if err := json.Unmarshal(b, &d.value); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s[%d]", name, i)
		}
		d.key = scene.KeyOf(d.raw)
		out = append(out, d)
	}
	return out, nil
}

func keysOf[T any](items []datum[T]) []string {
	keys := make([]string, len(items))
	for i, d := range items {
		keys[i] = d.key
	}
	return keys
}

// diffOf builds a Diff from a join and the joined keys.
func diffOf(keys []string, res scene.JoinResult) Diff {
	var d Diff
	for i, el := range res.Update {
		if el != nil {
			d.Kept = append(d.Kept, keys[i])
		}
	}
	for _, i := range res.Enter {
		d.Entered = append(d.Entered, keys[i])
	}
	for _, el := range res.Exit {
		d.Exited = append(d.Exited, el.Key)
	}
	return d
}
