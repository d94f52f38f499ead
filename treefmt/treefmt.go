// Package treefmt writes and reads syntax trees in the formats the winzig tool
// can emit: the indented text dump, JSON, YAML and CBOR.
//
// The text format is the one produced by [ast.Node.Render]. The structured
// formats share one document shape:
//
//	{label: "program", children: [{label: "<identifier>", children: [{label: "p", leaf: true}]}, ...]}
//
// Leaves are flagged explicitly because a leaf's text may equal a rule label
// (an identifier named "consts", say).
package treefmt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/metaphox/winzig/ast"
)

// Format selects an encoding.
type Format int

const (
	Text Format = iota
	JSON
	YAML
	CBOR
)

var formatNames = [...]string{
	Text: "text",
	JSON: "json",
	YAML: "yaml",
	CBOR: "cbor",
}

func (f Format) String() string {
	if int(f) >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat maps a flag or config value to a Format. Matching ignores case.
func ParseFormat(s string) (Format, error) {
	for i, name := range formatNames {
		if strings.EqualFold(s, name) {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tree format %q (want one of %s)", s, strings.Join(formatNames[:], ", "))
}

// ErrMalformed is wrapped by every decoding error caused by the input rather
// than by I/O.
var ErrMalformed = errors.New("malformed tree")

// DefaultIndent is the text format's indent unit, one per level of depth.
const DefaultIndent = "."

// Document is the structured form of a node.
type Document struct {
	Label    string     `json:"label" yaml:"label" cbor:"1,keyasint"`
	Leaf     bool       `json:"leaf,omitempty" yaml:"leaf,omitempty" cbor:"2,keyasint,omitempty"`
	Children []Document `json:"children,omitempty" yaml:"children,omitempty" cbor:"3,keyasint,omitempty"`
}

// cborMode encodes with the core deterministic rules so that equal trees give
// equal bytes.
var cborMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// ToDocument converts a tree to its structured form.
func ToDocument(n *ast.Node) Document {
	d := Document{Label: n.Label(), Leaf: n.Kind == ast.NodeLeaf}
	if len(n.Children) > 0 {
		d.Children = make([]Document, len(n.Children))
		for i, c := range n.Children {
			d.Children[i] = ToDocument(c)
		}
	}
	return d
}

// FromDocument rebuilds a tree, rejecting leaves with children and rule
// labels that do not exist.
func FromDocument(d Document) (*ast.Node, error) {
	if d.Leaf {
		if len(d.Children) > 0 {
			return nil, fmt.Errorf("%w: leaf %q has %d children", ErrMalformed, d.Label, len(d.Children))
		}
		return ast.NewLeaf(d.Label), nil
	}
	kind := ast.KindForLabel(d.Label)
	if kind == ast.NodeLeaf {
		return nil, fmt.Errorf("%w: unknown node label %q", ErrMalformed, d.Label)
	}
	n := ast.NewNode(kind)
	for _, cd := range d.Children {
		c, err := FromDocument(cd)
		if err != nil {
			return nil, err
		}
		n.AddChild(c)
	}
	return n, nil
}

// Encode writes n to w in format f. indent applies to Text only; empty means
// DefaultIndent.
func Encode(w io.Writer, n *ast.Node, f Format, indent string) error {
	switch f {
	case Text:
		return WriteText(w, n, indent)
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ToDocument(n))
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(ToDocument(n)); err != nil {
			return err
		}
		return enc.Close()
	case CBOR:
		data, err := cborMode.Marshal(ToDocument(n))
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("encode: unsupported format %v", f)
	}
}

// Marshal is Encode into a byte slice with the default indent.
func Marshal(n *ast.Node, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, n, f, DefaultIndent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data written by Marshal in format f.
func Unmarshal(data []byte, f Format) (*ast.Node, error) {
	var d Document
	switch f {
	case Text:
		return ReadText(bytes.NewReader(data), DefaultIndent)
	case JSON:
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	case YAML:
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	case CBOR:
		if err := cbor.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	default:
		return nil, fmt.Errorf("decode: unsupported format %v", f)
	}
	return FromDocument(d)
}
