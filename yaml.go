package relaves

// Parameter files in YAML, or JSON, which YAML parses as well. The file is a
// single mapping: scalars map to numbers, per-product and per-pond tables map
// an index to a number, and the demand table "d" maps a product to a mapping
// from day to number:
//
//	T: 2
//	M: 1
//	K: 1
//	Vmax: 1e4
//	a: {1: 1.2}
//	Hmax: {1: 1e7}
//	d:
//	  1: {1: 200, 2: 200}

import (
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Table keys of each kind. "m" is the holding cost when given as a table and
// the emissions penalty when given as a scalar.
var (
	productKeys = map[string]bool{
		"a": true, "w": true, "g": true, "u": true, "n": true, "Jmin": true, "Jmax": true,
		"m": true, "Ca": true, "c": true, "Cp": true, "IM0": true,
	}
	pondKeys = map[string]bool{
		"Hmax": true, "Qmax": true, "F": true, "I0": true, "C": true, "Cv": true,
		"f": true, "Cf": true,
	}
)

// IsProductKey reports whether key names a per-product table.
func IsProductKey(key string) bool { return productKeys[key] }

// IsPondKey reports whether key names a per-pond table.
func IsPondKey(key string) bool { return pondKeys[key] }

// LoadParamsFile reads a parameter file in YAML or JSON.
// In case of failure, function returns an error.
func LoadParamsFile(fileName string) (RawParams, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return RawParams{}, errors.Wrapf(err, "failed to open parameter file %s", fileName)
	}
	defer f.Close()

	raw, err := ReadParams(f)
	if err != nil {
		return RawParams{}, errors.Wrapf(err, "failed to read parameter file %s", fileName)
	}
	log().Debug("read parameter file", "file", fileName, "scalars", len(raw.Scalars),
		"productTables", len(raw.Product), "pondTables", len(raw.Pond))
	return raw, nil
}

// ReadParams parses parameters in YAML or JSON from r.
// In case of failure, function returns an error.
func ReadParams(r io.Reader) (RawParams, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return RawParams{}, errors.Wrap(err, "failed to parse parameters")
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return RawParams{}, errors.Errorf("line %d: parameters must be a mapping", root.Line)
	}

	raw := NewRawParams()
	for n := 0; n+1 < len(root.Content); n += 2 {
		key, val := root.Content[n].Value, root.Content[n+1]

		switch {
		case val.Kind == yaml.ScalarNode:
			v, err := nodeFloat(val)
			if err != nil {
				return RawParams{}, errors.Wrapf(err, "parameter %s", key)
			}
			raw.Scalars[key] = v

		case key == "d":
			if err := readDemandNode(val, raw.Demand); err != nil {
				return RawParams{}, errors.Wrap(err, "parameter d")
			}

		case productKeys[key]:
			tbl, err := nodeTable(val)
			if err != nil {
				return RawParams{}, errors.Wrapf(err, "parameter %s", key)
			}
			raw.Product[key] = tbl

		case pondKeys[key]:
			tbl, err := nodeTable(val)
			if err != nil {
				return RawParams{}, errors.Wrapf(err, "parameter %s", key)
			}
			raw.Pond[key] = tbl

		default:
			return RawParams{}, errors.Errorf("line %d: unknown table %s", val.Line, key)
		}
	}

	return raw, nil
}

func readDemandNode(node *yaml.Node, demand map[int]map[int]float64) error {
	if node.Kind != yaml.MappingNode {
		return errors.Errorf("line %d: expected a mapping from product to days", node.Line)
	}
	for n := 0; n+1 < len(node.Content); n += 2 {
		i, err := nodeIndex(node.Content[n])
		if err != nil {
			return err
		}
		days, err := nodeTable(node.Content[n+1])
		if err != nil {
			return errors.Wrapf(err, "product %d", i)
		}
		demand[i] = days
	}
	return nil
}

// nodeTable reads a mapping from a positive index to a number.
func nodeTable(node *yaml.Node) (map[int]float64, error) {
	if node.Kind != yaml.MappingNode {
		return nil, errors.Errorf("line %d: expected a mapping from index to value", node.Line)
	}
	out := make(map[int]float64, len(node.Content)/2)
	for n := 0; n+1 < len(node.Content); n += 2 {
		idx, err := nodeIndex(node.Content[n])
		if err != nil {
			return nil, err
		}
		v, err := nodeFloat(node.Content[n+1])
		if err != nil {
			return nil, errors.Wrapf(err, "index %d", idx)
		}
		out[idx] = v
	}
	return out, nil
}

// nodeIndex reads a positive integer key. Quoted keys, as in JSON, are
// accepted.
func nodeIndex(node *yaml.Node) (int, error) {
	idx, err := strconv.Atoi(node.Value)
	if err != nil || idx < 1 {
		return 0, errors.Errorf("line %d: index %q is not a positive integer", node.Line, node.Value)
	}
	return idx, nil
}

func nodeFloat(node *yaml.Node) (float64, error) {
	if node.Kind != yaml.ScalarNode {
		return 0, errors.Errorf("line %d: expected a number", node.Line)
	}
	v, err := strconv.ParseFloat(node.Value, 64)
	if err != nil {
		return 0, errors.Errorf("line %d: %q is not a number", node.Line, node.Value)
	}
	return v, nil
}
