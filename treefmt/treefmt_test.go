package treefmt_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metaphox/winzig/ast"
	"github.com/metaphox/winzig/parser"
	"github.com/metaphox/winzig/treefmt"
)

const program = `
program sample:
const limit = 10, star = '*';
type light = (red, amber, green);
var consts, n : integer;
function twice(v : integer) : integer;
begin return v * 2 end twice;
begin
    read(n);
    case n of 1..3: output("low"); otherwise output(twice(n)) end;
    for (consts := 0; ; ) exit;
    n :=: consts
end sample.`

func sampleTree(t *testing.T) *ast.Node {
	t.Helper()
	root, err := parser.ParseSource(program)
	require.NoError(t, err)
	return root
}

// ── Round trips ───────────────────────────────────────────────────────────────

func TestRoundTrip(t *testing.T) {
	root := sampleTree(t)
	for _, f := range []treefmt.Format{treefmt.Text, treefmt.JSON, treefmt.YAML, treefmt.CBOR} {
		t.Run(f.String(), func(t *testing.T) {
			data, err := treefmt.Marshal(root, f)
			require.NoError(t, err)
			require.NotEmpty(t, data)

			got, err := treefmt.Unmarshal(data, f)
			require.NoError(t, err)
			if diff := cmp.Diff(root, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, root.Render(0), got.Render(0))
		})
	}
}

func TestText_MatchesRender(t *testing.T) {
	root := sampleTree(t)
	var buf bytes.Buffer
	require.NoError(t, treefmt.WriteText(&buf, root, ""))
	assert.Equal(t, root.Render(0)+"\n", buf.String())
}

func TestText_CustomIndent(t *testing.T) {
	root := sampleTree(t)
	var buf bytes.Buffer
	require.NoError(t, treefmt.WriteText(&buf, root, "  "))
	assert.True(t, strings.HasPrefix(buf.String(), "program(7)\n  <identifier>(1)\n    sample(0)\n"))

	got, err := treefmt.ReadText(&buf, "  ")
	require.NoError(t, err)
	if diff := cmp.Diff(root, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

// An identifier spelled like a rule label stays a leaf in every format.
func TestRoundTrip_LeafNamedLikeRule(t *testing.T) {
	n := ast.NewNode(ast.NodeIdentifier)
	n.AddChild(ast.NewLeaf("consts"))

	for _, f := range []treefmt.Format{treefmt.Text, treefmt.JSON, treefmt.YAML, treefmt.CBOR} {
		data, err := treefmt.Marshal(n, f)
		require.NoError(t, err, f.String())
		got, err := treefmt.Unmarshal(data, f)
		require.NoError(t, err, f.String())
		require.Len(t, got.Children, 1, f.String())
		assert.Equal(t, ast.NodeLeaf, got.Children[0].Kind, f.String())
		assert.Equal(t, "consts", got.Children[0].Value, f.String())
	}
}

func TestCBOR_Deterministic(t *testing.T) {
	a, err := treefmt.Marshal(sampleTree(t), treefmt.CBOR)
	require.NoError(t, err)
	b, err := treefmt.Marshal(sampleTree(t), treefmt.CBOR)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestToDocument(t *testing.T) {
	n := ast.NewNode(ast.NodeOutString)
	s := ast.NewNode(ast.NodeString)
	s.AddChild(ast.NewLeaf("hi"))
	n.AddChild(s)

	want := treefmt.Document{
		Label: "string",
		Children: []treefmt.Document{{
			Label:    "<string>",
			Children: []treefmt.Document{{Label: "hi", Leaf: true}},
		}},
	}
	if diff := cmp.Diff(want, treefmt.ToDocument(n)); diff != "" {
		t.Errorf("ToDocument mismatch (-want +got):\n%s", diff)
	}
}

// ── Formats ───────────────────────────────────────────────────────────────────

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"text", "json", "yaml", "cbor", "JSON", "Yaml"} {
		f, err := treefmt.ParseFormat(s)
		require.NoError(t, err, s)
		assert.Equal(t, strings.ToLower(s), f.String())
	}

	_, err := treefmt.ParseFormat("xml")
	assert.ErrorContains(t, err, "unknown tree format")
}

// ── Malformed input ───────────────────────────────────────────────────────────

func TestReadText_Malformed(t *testing.T) {
	cases := []struct {
		name  string
		input string
		msg   string
	}{
		{"missing child", "program(2)\n.consts(0)\n", "input ends"},
		{"extra line", "exit(0)\nexit(0)\n", "unexpected line"},
		{"missing indent", "block(1)\nexit(0)\n", "want indent depth 1"},
		{"extra indent", "block(1)\n..exit(0)\n", "unknown node label \".exit\""},
		{"bad count", "block(x)\n", "bad child count"},
		{"no count", "block\n", "missing (count)"},
		{"unknown label", "blorp(0)\n", "unknown node label"},
		{"leaf with children", "<identifier>(1)\n.x(1)\n..y(0)\n", "claims 1 children"},
		{"empty", "", "input ends"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := treefmt.ReadText(strings.NewReader(tc.input), "")
			require.ErrorIs(t, err, treefmt.ErrMalformed)
			assert.ErrorContains(t, err, tc.msg)
		})
	}
}

// Trailing blank lines and CRLF line ends are tolerated.
func TestReadText_Lenient(t *testing.T) {
	got, err := treefmt.ReadText(strings.NewReader("block(1)\r\n.exit(0)\r\n\n\n"), ".")
	require.NoError(t, err)
	assert.Equal(t, "block(1)\n.exit(0)", got.Render(0))
}

// Leaf text may begin with the indent unit, so indent past a leaf's depth
// stays in its text.
func TestReadText_LeafKeepsExtraIndent(t *testing.T) {
	got, err := treefmt.ReadText(strings.NewReader("<identifier>(1)\n..x(0)\n"), "")
	require.NoError(t, err)
	require.Len(t, got.Children, 1)
	assert.Equal(t, ast.NodeLeaf, got.Children[0].Kind)
	assert.Equal(t, ".x", got.Children[0].Label())
}

func TestUnmarshal_Malformed(t *testing.T) {
	_, err := treefmt.Unmarshal([]byte(`{"label": `), treefmt.JSON)
	assert.ErrorIs(t, err, treefmt.ErrMalformed)

	_, err = treefmt.Unmarshal([]byte(`{"label": "blorp"}`), treefmt.JSON)
	assert.ErrorIs(t, err, treefmt.ErrMalformed)

	_, err = treefmt.Unmarshal([]byte("label: x\nleaf: true\nchildren:\n  - label: y\n    leaf: true\n"), treefmt.YAML)
	assert.ErrorIs(t, err, treefmt.ErrMalformed)

	_, err = treefmt.Unmarshal([]byte{0xff, 0x00}, treefmt.CBOR)
	assert.ErrorIs(t, err, treefmt.ErrMalformed)
}
