package vdf_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/nitroflow/vdf"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, input string, opts ...vdf.DecodeOption) *vdf.Object {
	t.Helper()
	doc, err := vdf.Parse([]byte(input), opts...)
	require.NoError(t, err)
	return doc
}

func getString(t *testing.T, o *vdf.Object, key string) string {
	t.Helper()
	v, ok := o.Get(key)
	require.True(t, ok, "missing key %q", key)
	s, ok := v.(string)
	require.True(t, ok, "key %q is not a scalar", key)
	return s
}

func getObject(t *testing.T, o *vdf.Object, key string) *vdf.Object {
	t.Helper()
	v, ok := o.Get(key)
	require.True(t, ok, "missing key %q", key)
	obj, ok := v.(*vdf.Object)
	require.True(t, ok, "key %q is not an object", key)
	return obj
}

func TestParse_Nesting(t *testing.T) {
	doc := mustParse(t, `"root" { "a" "1" "b" { "c" "2" } }`)

	root := getObject(t, doc, "root")
	require.Equal(t, []string{"a", "b"}, root.Keys())
	require.Equal(t, "1", getString(t, root, "a"))
	b := getObject(t, root, "b")
	require.Equal(t, "2", getString(t, b, "c"))
}

func TestParse_DuplicateKeysLastWriteWins(t *testing.T) {
	doc := mustParse(t, `"a" "1" "a" "2"`)
	require.Equal(t, 1, doc.Len())
	require.Equal(t, "2", getString(t, doc, "a"))
}

func TestParse_DuplicateKeyKeepsPosition(t *testing.T) {
	doc := mustParse(t, `"a" "1" "b" "2" "a" "3"`)
	require.Equal(t, []string{"a", "b"}, doc.Keys())
	require.Equal(t, "3", getString(t, doc, "a"))
}

func TestParse_UnquotedTokens(t *testing.T) {
	doc := mustParse(t, "app\n{\n\tname Half-Life\n\tappid 70\n}\n")
	app := getObject(t, doc, "app")
	require.Equal(t, "Half-Life", getString(t, app, "name"))
	require.Equal(t, "70", getString(t, app, "appid"))
}

func TestParse_Comments(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"double slash", "// leading\n\"a\" \"1\" // trailing\n"},
		{"single slash", "/ leading\n\"a\" \"1\" / trailing\n"},
		{"inside block", "\"o\" {\n// note\n\"a\" \"1\"\n}\n\"a\" \"1\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, tt.input)
			require.Equal(t, "1", getString(t, doc, "a"))
		})
	}
}

func TestParse_CRLF(t *testing.T) {
	doc := mustParse(t, "\"a\" \"1\"\r\n\"b\" \"2\"\r\n")
	require.Equal(t, "1", getString(t, doc, "a"))
	require.Equal(t, "2", getString(t, doc, "b"))
}

func TestParse_EmptyDocument(t *testing.T) {
	require.Equal(t, 0, mustParse(t, "").Len())
	require.Equal(t, 0, mustParse(t, "\n\n// only a comment\n").Len())
}

func TestParse_BaseAsValueIsScalar(t *testing.T) {
	doc := mustParse(t, "\"k\" \"#base\"\n")
	require.Equal(t, "#base", getString(t, doc, "k"))
}

// For any way of splitting the input into chunks, the decoded document must
// be identical to decoding it in one piece.
func TestDecoder_ChunkBoundaryIndependence(t *testing.T) {
	input := "\"quoted key\" \"va\\\"l\\\\ue\"\n" +
		"root\n{\n" +
		"\ta b\t// comment\n" +
		"\tnested { x \"y z\" }\n" +
		"}\n"
	want := mustParse(t, input)

	for size := 1; size <= len(input); size++ {
		d, err := vdf.NewDecoder()
		require.NoError(t, err)
		for start := 0; start < len(input); start += size {
			end := start + size
			if end > len(input) {
				end = len(input)
			}
			require.NoError(t, d.Feed(input[start:end]))
		}
		got, err := d.Complete()
		require.NoError(t, err)
		require.True(t, want.Equal(got), "chunk size %d decoded differently", size)
	}
}

func TestDecoder_FeedEmptyChunk(t *testing.T) {
	d, err := vdf.NewDecoder()
	require.NoError(t, err)
	require.NoError(t, d.Feed(""))
	require.NoError(t, d.Feed(`"a" "1"`))
	doc, err := d.Complete()
	require.NoError(t, err)
	require.Equal(t, "1", getString(t, doc, "a"))
}

func TestDecoder_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"unmatched close brace", `}`, "unmatched close brace"},
		{"unterminated block", `"root" { "a" "1"`, "unexpected end of input inside block"},
		{"dangling key", `"a"`, "dangling key with no value"},
		{"value brace", `"a" "1" }`, "unmatched close brace"},
		{"open brace for key", `{`, "expected key or close brace"},
		{"close for value", `"o" { "a" }`, "expected value or open brace"},
		{"unterminated quote", `"a" "never`, "unterminated quoted token"},
		{"bad escape", `"a" "\q"`, `invalid escape sequence \q`},
		{"incomplete escape", `"a" "x\`, "incomplete escape sequence"},
		{"directive unquoted name", "#base inc\n", "transclusion directive requires a quoted name"},
		{"directive missing name", "#base\n", "transclusion directive requires a quoted name"},
		{"directive trailing token", "#base \"inc\" extra\n", "expected line break after transclusion name"},
		{"directive unterminated", "#base \"inc\"", "unterminated transclusion directive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := vdf.Parse([]byte(tt.input))
			require.Error(t, err)
			var serr *vdf.SyntaxError
			require.ErrorAs(t, err, &serr)
			require.Contains(t, serr.Msg, tt.msg)
		})
	}
}

func TestDecoder_ErrorPosition(t *testing.T) {
	_, err := vdf.Parse([]byte("\"a\" \"1\"\n}"))
	var serr *vdf.SyntaxError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, 2, serr.Line)
	require.Equal(t, 1, serr.Column)
}

func TestDecoder_UnusableAfterError(t *testing.T) {
	d, err := vdf.NewDecoder()
	require.NoError(t, err)
	ferr := d.Feed("}")
	require.Error(t, ferr)

	require.Equal(t, ferr, d.Feed(`"a" "1"`))
	_, cerr := d.Complete()
	require.Equal(t, ferr, cerr)
}

func TestDecoder_SingleUse(t *testing.T) {
	d, err := vdf.NewDecoder()
	require.NoError(t, err)
	require.NoError(t, d.Feed(`"a" "1"`))
	_, err = d.Complete()
	require.NoError(t, err)

	require.Error(t, d.Feed("more"))
	_, err = d.Complete()
	require.Error(t, err)
}

func TestTransclusion_Registry(t *testing.T) {
	reg := vdf.NewRegistryTranscluder()
	require.NoError(t, reg.Register("inc", "\"x\" \"1\"\n"))

	doc := mustParse(t, "#base \"inc\"\n\"y\" \"2\"\n", vdf.WithTranscluder(reg))
	require.Equal(t, []string{"x", "y"}, doc.Keys())
	require.Equal(t, "1", getString(t, doc, "x"))
	require.Equal(t, "2", getString(t, doc, "y"))
}

func TestTransclusion_QuotedDirective(t *testing.T) {
	reg := vdf.NewRegistryTranscluder()
	require.NoError(t, reg.Register("inc", "\"x\" \"1\"\n"))

	doc := mustParse(t, "\"#base\" \"inc\"\n", vdf.WithTranscluder(reg))
	require.Equal(t, "1", getString(t, doc, "x"))
}

func TestTransclusion_InsideBlock(t *testing.T) {
	reg := vdf.NewRegistryTranscluder()
	require.NoError(t, reg.Register("inc", "\"x\" \"1\"\n"))

	doc := mustParse(t, "\"o\"\n{\n#base \"inc\"\n}\n", vdf.WithTranscluder(reg))
	require.Equal(t, "1", getString(t, getObject(t, doc, "o"), "x"))
}

func TestTransclusion_Nested(t *testing.T) {
	reg := vdf.NewRegistryTranscluder()
	require.NoError(t, reg.Register("outer", "#base \"inner\"\n\"from_outer\" \"1\"\n"))
	require.NoError(t, reg.Register("inner", "\"from_inner\" \"2\"\n"))

	doc := mustParse(t, "#base \"outer\"\n", vdf.WithTranscluder(reg))
	require.Equal(t, "2", getString(t, doc, "from_inner"))
	require.Equal(t, "1", getString(t, doc, "from_outer"))
}

func TestTransclusion_SplitAcrossChunks(t *testing.T) {
	reg := vdf.NewRegistryTranscluder()
	require.NoError(t, reg.Register("inc", "\"x\" \"1\"\n"))

	d, err := vdf.NewDecoder(vdf.WithTranscluder(reg))
	require.NoError(t, err)
	for _, chunk := range []string{"#ba", "se \"i", "nc\"\n\"y\"", " \"2\"\n"} {
		require.NoError(t, d.Feed(chunk))
	}
	doc, err := d.Complete()
	require.NoError(t, err)
	require.Equal(t, "1", getString(t, doc, "x"))
	require.Equal(t, "2", getString(t, doc, "y"))
}

func TestTransclusion_DisabledByDefault(t *testing.T) {
	_, err := vdf.Parse([]byte("#base \"inc\"\n"))
	require.Error(t, err)

	var terr *vdf.TransclusionError
	require.ErrorAs(t, err, &terr, "disabled transclusion must be a transclusion error, not a format error")
	require.Equal(t, "inc", terr.Name)

	var serr *vdf.SyntaxError
	require.False(t, errors.As(err, &serr))
}

func TestTransclusion_Ignored(t *testing.T) {
	doc := mustParse(t, "#base \"inc\"\n\"y\" \"2\"\n", vdf.WithTranscluder(vdf.IgnoreTranscluder{}))
	require.Equal(t, 1, doc.Len())
	require.Equal(t, "2", getString(t, doc, "y"))
}

func TestTransclusion_NotFound(t *testing.T) {
	reg := vdf.NewRegistryTranscluder()
	_, err := vdf.Parse([]byte("#base \"missing\"\n"), vdf.WithTranscluder(reg))
	var terr *vdf.TransclusionError
	require.ErrorAs(t, err, &terr)
	require.Equal(t, "missing", terr.Name)
}

func TestTransclusion_CycleHitsDepthLimit(t *testing.T) {
	reg := vdf.NewRegistryTranscluder()
	require.NoError(t, reg.Register("loop", "#base \"loop\"\n"))

	_, err := vdf.Parse([]byte("#base \"loop\"\n"),
		vdf.WithTranscluder(reg), vdf.MaxTransclusionDepth(4))
	var terr *vdf.TransclusionError
	require.ErrorAs(t, err, &terr)
	require.Contains(t, terr.Err.Error(), "maximum transclusion depth exceeded")
}

func TestTransclusion_MutualCycleHitsDepthLimit(t *testing.T) {
	reg := vdf.NewRegistryTranscluder()
	require.NoError(t, reg.Register("a", "#base \"b\"\n"))
	require.NoError(t, reg.Register("b", "#base \"a\"\n"))

	_, err := vdf.Parse([]byte("#base \"a\"\n"), vdf.WithTranscluder(reg))
	var terr *vdf.TransclusionError
	require.ErrorAs(t, err, &terr)
}

func TestTransclusion_DeepButBoundedSucceeds(t *testing.T) {
	reg := vdf.NewRegistryTranscluder()
	require.NoError(t, reg.Register("d3", "\"deep\" \"1\"\n"))
	require.NoError(t, reg.Register("d2", "#base \"d3\"\n"))
	require.NoError(t, reg.Register("d1", "#base \"d2\"\n"))

	doc := mustParse(t, "#base \"d1\"\n", vdf.WithTranscluder(reg), vdf.MaxTransclusionDepth(3))
	require.Equal(t, "1", getString(t, doc, "deep"))

	_, err := vdf.Parse([]byte("#base \"d1\"\n"), vdf.WithTranscluder(reg), vdf.MaxTransclusionDepth(2))
	var terr *vdf.TransclusionError
	require.ErrorAs(t, err, &terr)
}

// flattener is a Handler that records dotted-path/value pairs, ignoring
// object structure beyond the path.
type flattener struct {
	path  []string
	key   string
	pairs []string
}

func (f *flattener) EnterObject() {
	f.path = append(f.path, f.key)
}

func (f *flattener) ExitObject() {
	f.path = f.path[:len(f.path)-1]
}

func (f *flattener) Key(key string) {
	f.key = key
}

func (f *flattener) Value(value string) {
	path := strings.Join(append(f.path, f.key), ".")
	f.pairs = append(f.pairs, path+"="+value)
}

func TestDecoder_CustomHandler(t *testing.T) {
	fl := &flattener{}
	d, err := vdf.NewDecoder(vdf.WithHandler(fl))
	require.NoError(t, err)
	require.NoError(t, d.Feed(`"root" { "a" "1" "b" { "c" "2" } "d" "3" }`))

	doc, err := d.Complete()
	require.NoError(t, err)
	require.Nil(t, doc, "custom handler leaves no built document")
	require.Equal(t, []string{"root.a=1", "root.b.c=2", "root.d=3"}, fl.pairs)
}

func TestLoad(t *testing.T) {
	input := "\"app\"\n{\n\t\"name\"\t\"Portal\"\n}\n"
	doc, err := vdf.Load(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, "Portal", getString(t, getObject(t, doc, "app"), "name"))
}

func TestLoad_LargeDocumentStreams(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("\"big\"\n{\n")
	for i := 0; i < 3000; i++ {
		sb.WriteString("\t\"key\" \"value with spaces\"\n")
	}
	sb.WriteString("}\n")

	doc, err := vdf.Load(strings.NewReader(sb.String()))
	require.NoError(t, err)
	big := getObject(t, doc, "big")
	require.Equal(t, "value with spaces", getString(t, big, "key"))
}

func TestNewDecoder_OptionErrors(t *testing.T) {
	_, err := vdf.NewDecoder(vdf.WithTranscluder(nil))
	require.Error(t, err)
	_, err = vdf.NewDecoder(vdf.WithHandler(nil))
	require.Error(t, err)
	_, err = vdf.NewDecoder(vdf.MaxTransclusionDepth(0))
	require.Error(t, err)
}
