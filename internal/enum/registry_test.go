package enum

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/conduit-lang/enumtrait/internal/orm/record"
	"github.com/conduit-lang/enumtrait/internal/orm/schema"
	"github.com/conduit-lang/enumtrait/internal/orm/validation"
)

func newPost() *schema.ResourceSchema {
	post := schema.NewResourceSchema("Post")
	post.Persistent = true
	post.Fields["title"] = &schema.Field{
		Name: "title",
		Type: &schema.TypeSpec{BaseType: schema.TypeString, Nullable: true},
	}
	post.Fields["status"] = &schema.Field{
		Name: "status",
		Type: &schema.TypeSpec{BaseType: schema.TypeString, Nullable: true},
	}
	return post
}

func declareStatus(t *testing.T, reg *Registry, model *schema.ResourceSchema, opts ...DeclareOption) *Trait[Symbol] {
	t.Helper()
	trait, err := Declare(reg, model, "status", Values(Symbol("draft"), Symbol("published")), opts...)
	require.NoError(t, err)
	return trait
}

func TestRegistry_DeclareAnnotatesColumn(t *testing.T) {
	reg := NewRegistry()
	post := newPost()
	declareStatus(t, reg, post)

	col, ok := reg.Column(post, "status")
	require.True(t, ok)
	assert.True(t, col.IsEnum())
	assert.Equal(t, []schema.EnumOption{
		{Label: "Draft", Value: Symbol("draft")},
		{Label: "Published", Value: Symbol("published")},
	}, col.EnumOptions())

	v, ok := col.EnumValue("Published")
	assert.True(t, ok)
	assert.Equal(t, Symbol("published"), v)

	label, ok := col.EnumDisplay("draft")
	assert.True(t, ok)
	assert.Equal(t, "Draft", label)

	plain, ok := reg.Column(post, "title")
	require.True(t, ok)
	assert.False(t, plain.IsEnum())
}

func TestRegistry_DeclareCreatesMissingField(t *testing.T) {
	reg := NewRegistry()
	post := newPost()

	_, err := Declare(reg, post, "rank", Range(1, 3))
	require.NoError(t, err)

	field, ok := post.Fields["rank"]
	require.True(t, ok)
	assert.Equal(t, schema.TypeEnum, field.Type.BaseType)
	assert.True(t, field.IsEnum())
}

func TestRegistry_DeclareErrorLeavesModelUntouched(t *testing.T) {
	reg := NewRegistry()
	post := newPost()

	_, err := Declare(reg, post, "status", Values(Symbol("a")), WithAliases("a", "b"))
	require.ErrorIs(t, err, ErrDeclaration)

	assert.False(t, reg.IsEnumField(post, "status"))
	assert.False(t, post.HasWriteHook(CoerceHook))
	assert.Empty(t, post.Scopes)

	_, err = reg.Declare(nil, NewDeclaration("status", Values(1)))
	assert.ErrorIs(t, err, ErrDeclaration)
}

func TestRegistry_AllowNilValidation(t *testing.T) {
	engine := validation.NewEngine()
	ctx := context.Background()

	reg := NewRegistry()
	post := newPost()
	declareStatus(t, reg, post)

	rec := record.New(post)
	assert.NoError(t, engine.ValidateRecord(ctx, rec))

	strict := newPost()
	declareStatus(t, NewRegistry(), strict, AllowNil(false))

	err := engine.ValidateRecord(ctx, record.New(strict))
	require.Error(t, err)
	var verrs *validation.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{validation.MessageNotIncluded}, verrs.On("status"))
}

func TestRegistry_InvalidValueFailsValidationNotWrite(t *testing.T) {
	reg := NewRegistry()
	post := newPost()
	declareStatus(t, reg, post)

	rec := record.New(post)
	require.NoError(t, rec.Set("status", "deleted"))
	assert.Equal(t, Symbol("deleted"), rec.Get("status"))

	err := validation.NewEngine().ValidateRecord(context.Background(), rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status: is not included in the list")

	require.NoError(t, rec.Set("status", "published"))
	assert.NoError(t, validation.NewEngine().ValidateRecord(context.Background(), rec))
}

func TestRegistry_WriteCoercion(t *testing.T) {
	reg := NewRegistry()
	post := newPost()
	declareStatus(t, reg, post)

	rec := record.New(post)
	require.NoError(t, rec.Set("status", "value1"))
	assert.Equal(t, Symbol("value1"), rec.Get("status"))

	require.NoError(t, rec.Set("status", "draft"))
	assert.Equal(t, Symbol("draft"), rec.Get("status"))

	// non-enum attributes pass through untouched
	require.NoError(t, rec.Set("title", Symbol("hello")))
	assert.Equal(t, Symbol("hello"), rec.Get("title"))
}

func TestRegistry_CoercionRunsAfterOtherHooks(t *testing.T) {
	reg := NewRegistry()
	post := newPost()
	declareStatus(t, reg, post)

	post.AddWriteHook(&schema.WriteHook{
		Name: "trim",
		Fn: func(model *schema.ResourceSchema, field string, value interface{}) (interface{}, error) {
			if s, ok := value.(string); ok {
				return strings.TrimSpace(s), nil
			}
			return value, nil
		},
	})

	rec := record.New(post)
	require.NoError(t, rec.Set("status", "  published "))
	assert.Equal(t, Symbol("published"), rec.Get("status"))
}

func TestRegistry_WriteHookInstalledOnce(t *testing.T) {
	reg := NewRegistry()
	post := newPost()
	declareStatus(t, reg, post)
	declareStatus(t, reg, post)
	_, err := Declare(reg, post, "rank", Range(1, 5))
	require.NoError(t, err)

	article := post.Extend("Article")
	_, err = Declare(reg, article, "tone", Values("dry", "warm"))
	require.NoError(t, err)

	count := 0
	for _, h := range post.WriteHooks {
		if h.Name == CoerceHook {
			count++
			assert.Equal(t, schema.StageStore, h.Stage)
		}
	}
	assert.Equal(t, 1, count)
	assert.Empty(t, article.WriteHooks)
}

func TestRegistry_Inheritance(t *testing.T) {
	reg := NewRegistry()
	post := newPost()
	declareStatus(t, reg, post)

	article := post.Extend("Article")
	feature := article.Extend("Feature")

	for _, sub := range []*schema.ResourceSchema{article, feature} {
		assert.True(t, reg.IsEnumField(sub, "status"), sub.Name)

		inherited, ok := reg.Lookup(sub, "status")
		require.True(t, ok)
		own, _ := reg.Lookup(post, "status")
		assert.Same(t, own, inherited)

		_, ok = reg.Own(sub, "status")
		assert.False(t, ok)
	}

	// subtypes coerce through the ancestor's declaration
	rec := record.New(feature)
	require.NoError(t, rec.Set("status", "draft"))
	assert.Equal(t, Symbol("draft"), rec.Get("status"))
}

func TestRegistry_RootTypeIsNotConsulted(t *testing.T) {
	reg := NewRegistry()
	base := schema.NewResourceSchema("Base")
	base.Root = true

	_, err := Declare(reg, base, "kind", Values("a", "b"))
	require.NoError(t, err)

	post := base.Extend("Post")
	assert.True(t, reg.IsEnumField(base, "kind"))
	assert.False(t, reg.IsEnumField(post, "kind"))
}

func TestRegistry_SubtypeColumnsReMerge(t *testing.T) {
	reg := NewRegistry()
	post := newPost()
	article := post.Extend("Article")

	// the subtype redefines the column before the ancestor declares it
	article.Fields["status"] = &schema.Field{
		Name: "status",
		Type: &schema.TypeSpec{BaseType: schema.TypeString, Nullable: true},
	}
	col, ok := reg.Column(article, "status")
	require.True(t, ok)
	assert.False(t, col.IsEnum())

	declareStatus(t, reg, post)

	col, ok = reg.Column(article, "status")
	require.True(t, ok)
	require.True(t, col.IsEnum())
	assert.Equal(t, "Draft", col.EnumOptions()[0].Label)

	// a later re-declaration on the ancestor is picked up by the stale check
	_, err := Declare(reg, post, "status", Values(Symbol("draft"), Symbol("published")), WithLabels("Rough", "Final"))
	require.NoError(t, err)

	col, ok = reg.Column(article, "status")
	require.True(t, ok)
	assert.Equal(t, "Rough", col.EnumOptions()[0].Label)

	err = validation.NewEngine().Validate(context.Background(), article, map[string]interface{}{"status": Symbol("bogus")})
	assert.Error(t, err)
}

func TestRegistry_CachedSubtypeColumnsReset(t *testing.T) {
	reg := NewRegistry()
	post := newPost()
	article := post.Extend("Article")
	feature := article.Extend("Feature")
	engine := validation.NewEngine()
	ctx := context.Background()
	bogus := map[string]interface{}{"status": Symbol("bogus")}

	// snapshots built before the ancestor declares
	require.False(t, article.Columns()["status"].IsEnum())
	require.False(t, feature.Columns()["status"].IsEnum())

	declareStatus(t, reg, post)

	for _, sub := range []*schema.ResourceSchema{article, feature} {
		assert.True(t, sub.Columns()["status"].IsEnum(), sub.Name)

		err := engine.Validate(ctx, sub, bogus)
		var verrs *validation.ValidationErrors
		require.ErrorAs(t, err, &verrs, sub.Name)
		assert.Contains(t, err.Error(), validation.MessageNotIncluded)
	}

	// a re-declaration narrows the set seen by the cached subtype
	_, err := Declare(reg, post, "status", Values(Symbol("draft")))
	require.NoError(t, err)
	err = engine.Validate(ctx, article, map[string]interface{}{"status": Symbol("published")})
	assert.Error(t, err)
}

func TestRegistry_RedeclareInheritedFieldKeepsType(t *testing.T) {
	reg := NewRegistry()
	post := newPost()
	post.Fields["status"].Type = &schema.TypeSpec{BaseType: schema.TypeString, Nullable: false, Default: "draft"}
	declareStatus(t, reg, post)

	article := post.Extend("Article")
	_, err := Declare(reg, article, "status", Values(Symbol("draft"), Symbol("reviewed")))
	require.NoError(t, err)

	own := article.Fields["status"]
	require.NotNil(t, own)
	assert.Equal(t, &schema.TypeSpec{BaseType: schema.TypeString, Nullable: false, Default: "draft"}, own.Type)
	assert.NotSame(t, post.Fields["status"].Type, own.Type)

	// the ancestor keeps its own annotation
	postBundle, _ := reg.Own(post, "status")
	assert.Same(t, postBundle, post.Fields["status"].Enum)

	col, ok := reg.Column(article, "status")
	require.True(t, ok)
	assert.Equal(t, []string{"Draft", "Reviewed"}, []string{col.EnumOptions()[0].Label, col.EnumOptions()[1].Label})
}

func TestRegistry_FreshSnapshotIsReused(t *testing.T) {
	reg := NewRegistry()
	post := newPost()
	declareStatus(t, reg, post)

	first, ok := reg.Column(post, "status")
	require.True(t, ok)
	second, ok := reg.Column(post, "status")
	require.True(t, ok)
	assert.Same(t, first, second)
}

func TestRegistry_ScopesAndRedeclaration(t *testing.T) {
	reg := NewRegistry()
	post := newPost()
	declareStatus(t, reg, post, WithAliases("draft", "Live Now"))

	require.Contains(t, post.Scopes, "draft_statuss")
	require.Contains(t, post.Scopes, "live_now_statuss")
	assert.Equal(t, map[string]interface{}{"status": Symbol("published")}, post.Scopes["live_now_statuss"].Equals)

	members, ok := reg.Members(post, "status")
	require.True(t, ok)
	assert.Equal(t, []string{"draft_status?", "live_now_status?"}, members.PredicateNames())
	assert.Equal(t, []string{"draft_statuss", "live_now_statuss"}, members.ScopeNames())
	assert.Equal(t, "statuses", members.Values)
	assert.Equal(t, "status_aliases", members.Aliases)
	assert.Equal(t, "status_labels", members.Labels)
	assert.Equal(t, "status_options", members.Options)
	assert.Equal(t, "status_alias", members.Alias)
	assert.Equal(t, "status_label", members.Label)
	assert.Equal(t, "status_display", members.Display)

	declareStatus(t, reg, post, WithAliases("wip", "done"))
	assert.NotContains(t, post.Scopes, "draft_statuss")
	assert.NotContains(t, post.Scopes, "live_now_statuss")
	assert.Contains(t, post.Scopes, "wip_statuss")
	assert.Contains(t, post.Scopes, "done_statuss")
	assert.Equal(t, []string{"status"}, reg.Fields(post))
}

func TestRegistry_NoScopesWithoutPersistence(t *testing.T) {
	reg := NewRegistry()
	form := schema.NewResourceSchema("ContactForm")

	_, err := Declare(reg, form, "topic", Values("sales", "support"))
	require.NoError(t, err)

	assert.Empty(t, form.Scopes)
	members, _ := reg.Members(form, "topic")
	assert.Empty(t, members.Scopes)
	assert.Len(t, members.Predicates, 2)
}

func TestRegistry_Predicate(t *testing.T) {
	reg := NewRegistry()
	review := schema.NewResourceSchema("Review")
	_, err := Declare(reg, review, "rank", Range(1, 5),
		WithAliases("bad", "common", "good", "excellent", "awesome"))
	require.NoError(t, err)

	rec := record.New(review)
	got, err := reg.Predicate(rec, "good_rank?")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, rec.Set("rank", "3"))
	got, err = reg.Predicate(rec, "good_rank?")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, *got)

	got, err = reg.Predicate(rec, "bad_rank?")
	require.NoError(t, err)
	assert.False(t, *got)

	_, err = reg.Predicate(rec, "great_rank?")
	assert.ErrorIs(t, err, ErrUnknownMember)
}

func TestRegistry_FieldsAndDeclarations(t *testing.T) {
	reg := NewRegistry()
	post := newPost()
	declareStatus(t, reg, post)
	_, err := Declare(reg, post, "rank", Range(1, 2))
	require.NoError(t, err)

	article := post.Extend("Article")
	_, err = Declare(reg, article, "tone", Values("dry"))
	require.NoError(t, err)

	assert.Equal(t, []string{"tone", "status", "rank"}, reg.Fields(article))

	decls := reg.Declarations()
	require.Len(t, decls, 3)
	assert.Equal(t, "Article", decls[0].Model.Name)
	assert.Equal(t, "tone", decls[0].Bundle.Field())
	assert.Equal(t, "status", decls[1].Bundle.Field())
	assert.Equal(t, "rank", decls[2].Bundle.Field())
}

func TestRegistry_LogsDeclarations(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	reg := NewRegistry(WithLogger(zap.New(core)))

	declareStatus(t, reg, newPost())

	entries := logs.FilterMessage("enum declared").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Post", entries[0].ContextMap()["model"])
	assert.Equal(t, "status", entries[0].ContextMap()["field"])
}
