package deck

import (
	"errors"
	"testing"

	"github.com/arcanaland/ankideck/internal/card"
	"github.com/arcanaland/ankideck/internal/model"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func parse(t *testing.T, doc string) []card.Record {
	t.Helper()
	records, err := card.Parse([]byte(doc))
	require.NoError(t, err)
	return records
}

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;Tom &amp; Jerry&lt;/b&gt; &quot;hi&quot; &#x27;yo&#x27;",
		EscapeHTML(`<b>Tom & Jerry</b> "hi" 'yo'`))
	assert.Equal(t, "{{c1::France}}", EscapeHTML("{{c1::France}}"))
	assert.Equal(t, "&amp;amp;", EscapeHTML("&amp;"))
}

func TestTransformBasic(t *testing.T) {
	tr := NewTransformer(model.NewRegistry(), nil)
	res, err := tr.Transform(parse(t, `- {type: basic, front: "2+2?", back: "4"}`))
	require.NoError(t, err)
	require.Len(t, res.Notes, 1)

	n := res.Notes[0]
	assert.Equal(t, model.BasicID, n.Model.ID)
	assert.Equal(t, []string{
		`<div style="text-align:left;">2+2?</div>`,
		`<div style="text-align:left;">4</div>`,
	}, n.Fields)
	assert.Empty(t, n.GUID)
	assert.Empty(t, res.Skipped)
}

func TestTransformEscapesBasicFields(t *testing.T) {
	tr := NewTransformer(model.NewRegistry(), nil)
	res, err := tr.Transform(parse(t, `
- type: basic
  front: "a < b & \"c\""
  back: "<i>it's</i>"
`))
	require.NoError(t, err)
	require.Len(t, res.Notes, 1)

	assert.Equal(t, `<div style="text-align:left;">a &lt; b &amp; &quot;c&quot;</div>`, res.Notes[0].Fields[0])
	assert.Equal(t, `<div style="text-align:left;">&lt;i&gt;it&#x27;s&lt;/i&gt;</div>`, res.Notes[0].Fields[1])
}

func TestTransformTypeInKeepsBackRaw(t *testing.T) {
	tr := NewTransformer(model.NewRegistry(), nil)
	res, err := tr.Transform(parse(t, `
- type: type-in-the-answer
  front: "x < y?"
  back: "<b>Tom & Jerry</b> 'quoted'"
`))
	require.NoError(t, err)
	require.Len(t, res.Notes, 1)

	n := res.Notes[0]
	assert.Equal(t, model.TypeInID, n.Model.ID)
	assert.Equal(t, `<div style="text-align:left;">x &lt; y?</div>`, n.Fields[0])
	// Byte-for-byte: neither escaped nor wrapped
	assert.Equal(t, "<b>Tom & Jerry</b> 'quoted'", n.Fields[1])
}

func TestTransformClozeGUIDIsContentDerived(t *testing.T) {
	doc := `- {type: cloze, text: "Paris is the capital of {{c1::France}}"}`

	first, err := NewTransformer(model.NewRegistry(), nil).Transform(parse(t, doc))
	require.NoError(t, err)
	second, err := NewTransformer(model.NewRegistry(), nil).Transform(parse(t, doc))
	require.NoError(t, err)

	require.Len(t, first.Notes, 1)
	n := first.Notes[0]
	assert.Equal(t, model.ClozeID, n.Model.ID)
	assert.Equal(t, `<div style="text-align:left;">Paris is the capital of {{c1::France}}</div>`, n.Fields[0])
	assert.Equal(t, GUIDFor(n.Fields[0]), n.GUID)
	assert.NotEmpty(t, n.GUID)
	assert.Equal(t, n.GUID, second.Notes[0].GUID)

	other, err := NewTransformer(model.NewRegistry(), nil).Transform(
		parse(t, `- {type: cloze, text: "Rome is the capital of {{c1::Italy}}"}`))
	require.NoError(t, err)
	assert.NotEqual(t, n.GUID, other.Notes[0].GUID)
}

func TestTransformEscapesClozeText(t *testing.T) {
	res, err := NewTransformer(model.NewRegistry(), nil).Transform(
		parse(t, `- {type: cloze, text: "{{c1::Tom & Jerry}} <3"}`))
	require.NoError(t, err)
	require.Len(t, res.Notes, 1)

	n := res.Notes[0]
	assert.Equal(t, `<div style="text-align:left;">{{c1::Tom &amp; Jerry}} &lt;3</div>`, n.Fields[0])
	assert.Equal(t, GUIDFor(n.Fields[0]), n.GUID)
}

func TestTransformSkipsUnknownTypes(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	tr := NewTransformer(model.NewRegistry(), zap.New(core))

	res, err := tr.Transform(parse(t, `
- {type: image-occlusion, front: a, back: b}
- {front: no type here, back: b}
- {type: basic, front: q, back: a}
`))
	require.NoError(t, err)

	require.Len(t, res.Notes, 1)
	assert.Equal(t, model.BasicID, res.Notes[0].Model.ID)

	require.Len(t, res.Skipped, 2)
	assert.Equal(t, card.Type("image-occlusion"), res.Skipped[0].Type)
	assert.Equal(t, 0, res.Skipped[0].Index)
	assert.Equal(t, card.Type(""), res.Skipped[1].Type)

	entries := logs.FilterMessage("Skipping card").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "image-occlusion", entries[0].ContextMap()["type"])
}

func TestTransformKeyMissingIsFatal(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
		key  string
	}{
		{name: "basic without back", doc: `- {type: basic, front: q}`, key: "back"},
		{name: "type-in without front", doc: `- {type: type-in-the-answer, back: a}`, key: "front"},
		{name: "cloze without text", doc: `- {type: cloze, front: q}`, key: "text"},
		{name: "null value", doc: `- {type: basic, front: q, back: ~}`, key: "back"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tr := NewTransformer(model.NewRegistry(), nil)
			res, err := tr.Transform(parse(t, tc.doc))
			assert.Nil(t, res)

			var kerr *card.KeyMissingError
			require.True(t, errors.As(err, &kerr), "expected KeyMissingError, got %v", err)
			assert.Equal(t, tc.key, kerr.Key)
		})
	}
}

func TestTransformKeepsInputOrder(t *testing.T) {
	tr := NewTransformer(model.NewRegistry(), nil)
	res, err := tr.Transform(parse(t, `
- {type: cloze, text: "{{c1::one}}", tags: [first]}
- {type: basic, front: two, back: "2"}
- {type: bogus}
- {type: type-in-the-answer, front: three, back: "3"}
`))
	require.NoError(t, err)

	type summary struct {
		ModelID int64
		Tags    []string
	}
	got := make([]summary, 0, len(res.Notes))
	for _, n := range res.Notes {
		got = append(got, summary{ModelID: n.Model.ID, Tags: n.Tags})
	}
	want := []summary{
		{ModelID: model.ClozeID, Tags: []string{"first"}},
		{ModelID: model.BasicID},
		{ModelID: model.TypeInID},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("notes mismatch (-want +got):\n%s", diff)
	}
}

func TestTransformEmpty(t *testing.T) {
	res, err := NewTransformer(model.NewRegistry(), nil).Transform(nil)
	require.NoError(t, err)
	assert.Empty(t, res.Notes)
	assert.Empty(t, res.Skipped)
}
