package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/enumtrait/internal/enum"
	"github.com/conduit-lang/enumtrait/internal/orm/schema"
)

func statusColumn(t *testing.T) *schema.Field {
	t.Helper()
	reg := enum.NewRegistry()
	post := schema.NewResourceSchema("Post")
	_, err := enum.Declare(reg, post, "status",
		enum.Values(enum.Symbols("draft", "published", "archived")...),
		enum.WithLabels("Draft", "Live", "Archived"),
	)
	require.NoError(t, err)

	col, ok := reg.Column(post, "status")
	require.True(t, ok)
	return col
}

func labels(choices []Choice) []string {
	out := make([]string, len(choices))
	for i, c := range choices {
		out[i] = c.Label
	}
	return out
}

func TestControlFor(t *testing.T) {
	assert.Equal(t, ControlSelect, ControlFor(statusColumn(t)))
	assert.Equal(t, ControlDefault, ControlFor(&schema.Field{Name: "title"}))
	assert.Equal(t, ControlDefault, ControlFor(nil))
	assert.Equal(t, "select", ControlSelect.String())
	assert.Equal(t, "radio", ControlRadio.String())
}

func TestSelectOptions(t *testing.T) {
	col := statusColumn(t)

	got, err := SelectOptions(col, enum.Symbol("published"), Config{})
	require.NoError(t, err)
	assert.Equal(t, []Choice{
		{Label: "Draft", Value: "draft", Raw: enum.Symbol("draft")},
		{Label: "Live", Value: "published", Raw: enum.Symbol("published"), Selected: true},
		{Label: "Archived", Value: "archived", Raw: enum.Symbol("archived")},
	}, got)
}

func TestSelectOptions_SelectionUsesStringForm(t *testing.T) {
	col := statusColumn(t)

	got, err := SelectOptions(col, "archived", Config{})
	require.NoError(t, err)
	assert.True(t, got[2].Selected)

	got, err = SelectOptions(col, nil, Config{})
	require.NoError(t, err)
	for _, c := range got {
		assert.False(t, c.Selected)
	}
}

func TestSelectOptions_Prompt(t *testing.T) {
	col := statusColumn(t)

	got, err := SelectOptions(col, nil, Config{Prompt: "Pick one"})
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, Choice{Label: "Pick one", Selected: true}, got[0])

	got, err = SelectOptions(col, enum.Symbol("draft"), Config{Prompt: "Pick one"})
	require.NoError(t, err)
	assert.False(t, got[0].Selected)
	assert.True(t, got[1].Selected)
}

func TestOptions_Filters(t *testing.T) {
	col := statusColumn(t)

	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{"only by label", Config{Only: []string{"Draft", "Live"}}, []string{"Draft", "Live"}},
		{"only by value", Config{Only: []string{"archived"}}, []string{"Archived"}},
		{"exclude by label", Config{Exclude: []string{"Live"}}, []string{"Draft", "Archived"}},
		{"exclude by value", Config{Exclude: []string{"draft", "archived"}}, []string{"Live"}},
		{"only and exclude", Config{Only: []string{"Draft", "Live"}, Exclude: []string{"draft"}}, []string{"Live"}},
		{"only matches nothing", Config{Only: []string{"nope"}}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectOptions(col, nil, tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, labels(got))
		})
	}
}

func TestRadioOptions(t *testing.T) {
	col := statusColumn(t)

	got, err := RadioOptions(col, enum.Symbol("draft"), Config{Prompt: "ignored"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "status_draft", got[0].ID)
	assert.True(t, got[0].Selected)
	assert.Equal(t, "status_archived", got[2].ID)

	got, err = RadioOptions(col, nil, Config{ID: "post_status", Exclude: []string{"Draft"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"post_status_published", "post_status_archived"}, []string{got[0].ID, got[1].ID})
}

func TestOptions_ExplicitSource(t *testing.T) {
	title := &schema.Field{Name: "size"}
	cfg := Config{Options: []schema.EnumOption{
		{Label: "<b>Small</b>", Value: 1},
		{Label: "Large<script>alert(1)</script>", Value: 3},
	}}

	got, err := RadioOptions(title, 3, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Small", "Large"}, labels(got))
	assert.Equal(t, "size_1", got[0].ID)
	assert.True(t, got[1].Selected)
	assert.Equal(t, 3, got[1].Raw)
}

func TestOptions_UnknownSource(t *testing.T) {
	_, err := SelectOptions(&schema.Field{Name: "title"}, nil, Config{})
	assert.ErrorIs(t, err, ErrUnknownEnumOptions)
	assert.Contains(t, err.Error(), "title")

	_, err = RadioOptions(nil, nil, Config{})
	assert.ErrorIs(t, err, ErrUnknownEnumOptions)
}

func TestDisplayAndParse(t *testing.T) {
	col := statusColumn(t)

	assert.Equal(t, "Live", DisplayValue(col, enum.Symbol("published")))
	assert.Equal(t, "Live", DisplayValue(col, "published"))
	assert.Equal(t, "deleted", DisplayValue(col, "deleted"))
	assert.Equal(t, "", DisplayValue(col, nil))
	assert.Equal(t, "7", DisplayValue(&schema.Field{Name: "views"}, 7))

	v, ok := ParseDisplay(col, "Archived")
	assert.True(t, ok)
	assert.Equal(t, enum.Symbol("archived"), v)

	_, ok = ParseDisplay(col, "archived")
	assert.False(t, ok)
}
