package typeenc

import (
	"sync"

	"github.com/wippyai/objc-runtime/errors"
)

// Decoder memoizes Decode results by encoding text.
type Decoder struct {
	cache sync.Map // string -> *Type
}

func NewDecoder() *Decoder {
	return &Decoder{}
}

func (d *Decoder) Decode(enc string) (*Type, error) {
	if cached, ok := d.cache.Load(enc); ok {
		return cached.(*Type), nil
	}

	t, err := Decode(enc)
	if err != nil {
		return nil, err
	}

	d.cache.Store(enc, t)
	return t, nil
}

// DecodeAll decodes a list of encodings, stopping at the first failure.
func (d *Decoder) DecodeAll(encs []string) ([]*Type, error) {
	out := make([]*Type, len(encs))
	for i, enc := range encs {
		t, err := d.Decode(enc)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func invalid(full, unit string) error {
	return errors.InvalidEncoding(full, unit)
}
