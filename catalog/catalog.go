// Package catalog parses and validates the descriptor catalog document that
// a UI collaborator hands the core via load-catalog. The catalog itself is
// user-supplied and external to the core, but turning its bytes into the
// section/descriptor-literal shape metric.Table.LoadCatalog expects has to
// live somewhere, and this is that somewhere: schema validation against a
// locally embedded JSON Schema (never fetched over the network), followed by
// an order-preserving decode so declared section order survives into
// metric.Table.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/vstojkovic-mongodb/r2t2/errs"
	"github.com/vstojkovic-mongodb/r2t2/metric"
)

// literal mirrors one descriptor object from the catalog document: a key
// path expressed as its raw segments, a display name, and an optional scale.
type literal struct {
	Key   []string `json:"key"`
	Name  string   `json:"name"`
	Scale *float64 `json:"scale"`
}

// Load reads, validates, and decodes a catalog document from r. It returns
// the section names in declared order and a map from section name to its
// ordered descriptor entries, ready for metric.Table.LoadCatalog.
func Load(r io.Reader) (order []string, sections map[string][]metric.CatalogEntry, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errs.Wrap(errs.KindIO, "reading catalog document", err)
	}

	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, nil, errs.Wrap(errs.KindCatalogParse, "catalog is not valid JSON", err)
	}
	if err := compiledSchema.Validate(generic); err != nil {
		return nil, nil, errs.Wrap(errs.KindCatalogParse, "catalog failed schema validation", err)
	}

	order, raw, err := decodeSectionOrder(data)
	if err != nil {
		return nil, nil, errs.Wrap(errs.KindCatalogParse, "decoding catalog sections", err)
	}

	sections = make(map[string][]metric.CatalogEntry, len(order))
	for _, name := range order {
		var lits []literal
		if err := json.Unmarshal(raw[name], &lits); err != nil {
			return nil, nil, errs.Wrap(errs.KindCatalogParse, fmt.Sprintf("decoding section %q", name), err)
		}
		entries := make([]metric.CatalogEntry, len(lits))
		for i, lit := range lits {
			scale := 1.0
			if lit.Scale != nil {
				scale = *lit.Scale
			}
			entries[i] = metric.CatalogEntry{
				Key:   metric.NewPath(lit.Key...),
				Name:  lit.Name,
				Scale: scale,
			}
		}
		sections[name] = entries
	}

	return order, sections, nil
}

// LoadFile opens path and delegates to Load.
func LoadFile(path string) (order []string, sections map[string][]metric.CatalogEntry, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errs.Wrap(errs.KindIO, "opening catalog file", err)
	}
	defer f.Close()
	return Load(f)
}

// decodeSectionOrder walks the top-level JSON object token by token to
// recover section declaration order, which encoding/json's map decoding
// would otherwise discard.
func decodeSectionOrder(data []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("catalog document must be a JSON object")
	}

	var order []string
	raw := make(map[string]json.RawMessage)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("catalog section name must be a string")
		}

		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, nil, err
		}

		order = append(order, key)
		raw[key] = val
	}

	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}

	return order, raw, nil
}
