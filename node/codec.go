package node

import (
	"encoding/json"
	"fmt"
	"time"
)

type wireNode struct {
	Path       string                  `json:"path"`
	Type       string                  `json:"type,omitempty"`
	Version    int64                   `json:"version,omitempty"`
	Properties map[string]wireProperty `json:"properties,omitempty"`
}

type wireProperty struct {
	Type     string          `json:"type"`
	Multiple bool            `json:"multiple,omitempty"`
	Value    json.RawMessage `json:"value"`
}

// Marshal encodes a node with typed properties.
func Marshal(n *Node) ([]byte, error) {
	props, err := encodeProperties(n.Properties)
	if err != nil {
		return nil, fmt.Errorf("encode node %s: %w", n.Path, err)
	}

	return json.Marshal(wireNode{
		Path:       n.Path,
		Type:       n.TypeTag,
		Version:    n.Version,
		Properties: props,
	})
}

// Unmarshal decodes a node produced by Marshal.
func Unmarshal(data []byte) (*Node, error) {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode node: %w", err)
	}

	props, err := decodeProperties(w.Properties)
	if err != nil {
		return nil, fmt.Errorf("decode node %s: %w", w.Path, err)
	}

	return &Node{
		Path:       w.Path,
		TypeTag:    w.Type,
		Version:    w.Version,
		Properties: props,
	}, nil
}

// EncodeProperties encodes only the property set.
func EncodeProperties(props map[string]any) ([]byte, error) {
	wp, err := encodeProperties(props)
	if err != nil {
		return nil, err
	}

	if wp == nil {
		wp = map[string]wireProperty{}
	}

	return json.Marshal(wp)
}

// DecodeProperties is the inverse of EncodeProperties.
func DecodeProperties(data []byte) (map[string]any, error) {
	var wp map[string]wireProperty
	if err := json.Unmarshal(data, &wp); err != nil {
		return nil, fmt.Errorf("decode properties: %w", err)
	}

	return decodeProperties(wp)
}

func encodeProperties(props map[string]any) (map[string]wireProperty, error) {
	if len(props) == 0 {
		return nil, nil
	}

	out := make(map[string]wireProperty, len(props))

	for name, raw := range props {
		v, err := Normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}

		wp, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}

		out[name] = wp
	}

	return out, nil
}

func encodeValue(v any) (wireProperty, error) {
	multi, ok := v.([]any)
	if !ok {
		data, err := encodeScalar(v)
		if err != nil {
			return wireProperty{}, err
		}

		return wireProperty{Type: TypeOf(v).String(), Value: data}, nil
	}

	elemType := TypeString
	if len(multi) > 0 {
		elemType = TypeOf(multi[0])
	}

	elems := make([]json.RawMessage, len(multi))

	for i, e := range multi {
		data, err := encodeScalar(e)
		if err != nil {
			return wireProperty{}, err
		}

		elems[i] = data
	}

	data, err := json.Marshal(elems)
	if err != nil {
		return wireProperty{}, err
	}

	return wireProperty{Type: elemType.String(), Multiple: true, Value: data}, nil
}

func encodeScalar(v any) (json.RawMessage, error) {
	if t, ok := v.(time.Time); ok {
		return json.Marshal(t.Format(time.RFC3339Nano))
	}

	return json.Marshal(v)
}

func decodeProperties(wp map[string]wireProperty) (map[string]any, error) {
	out := make(map[string]any, len(wp))

	for name, p := range wp {
		t, err := ParsePropertyType(p.Type)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}

		if !p.Multiple {
			v, err := decodeScalar(t, p.Value)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", name, err)
			}

			out[name] = v

			continue
		}

		var elems []json.RawMessage
		if err := json.Unmarshal(p.Value, &elems); err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}

		values := make([]any, len(elems))

		for i, e := range elems {
			v, err := decodeScalar(t, e)
			if err != nil {
				return nil, fmt.Errorf("property %s[%d]: %w", name, i, err)
			}

			values[i] = v
		}

		out[name] = values
	}

	return out, nil
}

func decodeScalar(t PropertyType, data json.RawMessage) (any, error) {
	switch t {
	case TypeString:
		var s string
		err := json.Unmarshal(data, &s)

		return s, err
	case TypeLong:
		var i int64
		err := json.Unmarshal(data, &i)

		return i, err
	case TypeDouble:
		var f float64
		err := json.Unmarshal(data, &f)

		return f, err
	case TypeBoolean:
		var b bool
		err := json.Unmarshal(data, &b)

		return b, err
	case TypeDate:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}

		return time.Parse(time.RFC3339Nano, s)
	case TypeBinary:
		var b []byte
		err := json.Unmarshal(data, &b)

		return b, err
	default:
		return nil, fmt.Errorf("unsupported property type %s", t)
	}
}
