package codegen

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/enumtrait/internal/enum"
	"github.com/conduit-lang/enumtrait/internal/orm/schema"
)

func createPostSchema() *schema.ResourceSchema {
	post := schema.NewResourceSchema("Post")
	post.Persistent = true
	post.Fields["title"] = &schema.Field{
		Name: "title",
		Type: &schema.TypeSpec{BaseType: schema.TypeString, Nullable: false},
	}
	post.Fields["views"] = &schema.Field{
		Name: "views",
		Type: &schema.TypeSpec{BaseType: schema.TypeInt, Nullable: true, Default: 0},
	}
	return post
}

func TestDDLGenerator_GenerateCreateTable(t *testing.T) {
	post := createPostSchema()
	post.Fields["status"] = &schema.Field{
		Name: "status",
		Type: &schema.TypeSpec{BaseType: schema.TypeEnum, Nullable: true},
		Constraints: []schema.Constraint{{
			Type:  schema.ConstraintInclusion,
			Value: schema.Inclusion{In: []interface{}{"draft", "it's live"}},
		}},
	}

	tests := []struct {
		name    string
		dialect Dialect
		want    string
	}{
		{
			name:    "postgres",
			dialect: DialectPostgres,
			want: `CREATE TABLE IF NOT EXISTS "posts" (
  "id" BIGSERIAL PRIMARY KEY,
  "status" VARCHAR(255) NOT NULL CHECK ("status" IN ('draft', 'it''s live')),
  "title" VARCHAR(255) NOT NULL,
  "views" INTEGER NULL DEFAULT 0
);`,
		},
		{
			name:    "sqlite",
			dialect: DialectSQLite,
			want: `CREATE TABLE IF NOT EXISTS "posts" (
  "id" INTEGER PRIMARY KEY,
  "status" TEXT NOT NULL CHECK ("status" IN ('draft', 'it''s live')),
  "title" TEXT NOT NULL,
  "views" INTEGER NULL DEFAULT 0
);`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewDDLGenerator(tt.dialect).GenerateCreateTable(post)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDDLGenerator_Errors(t *testing.T) {
	g := NewDDLGenerator(DialectPostgres)

	_, err := g.GenerateCreateTable()
	assert.Error(t, err)

	noTable := schema.NewResourceSchema("Thing")
	noTable.TableName = ""
	_, err = g.GenerateCreateTable(noTable)
	assert.ErrorContains(t, err, "has no table")

	_, err = g.GenerateCreateTable(createPostSchema(), schema.NewResourceSchema("Comment"))
	assert.ErrorContains(t, err, "different tables")
}

func TestDDLGenerator_EnumColumns(t *testing.T) {
	reg := enum.NewRegistry()
	review := schema.NewResourceSchema("Review")
	review.Persistent = true

	_, err := enum.Declare(reg, review, "rank", enum.Range(1, 3), enum.AllowNil(false))
	require.NoError(t, err)
	_, err = enum.Declare(reg, review, "mood", enum.Values(enum.Symbols("calm", "angry")...))
	require.NoError(t, err)

	got, err := NewDDLGenerator(DialectPostgres).GenerateCreateTable(review)
	require.NoError(t, err)
	assert.Contains(t, got, `"rank" INTEGER NOT NULL CHECK ("rank" IN (1, 2, 3))`)
	assert.Contains(t, got, `"mood" VARCHAR(255) NULL CHECK ("mood" IN ('calm', 'angry'))`)
}

func TestDDLGenerator_GenerateSchema_SharedTable(t *testing.T) {
	reg := enum.NewRegistry()
	post := createPostSchema()
	_, err := enum.Declare(reg, post, "status", enum.Values(enum.Symbols("draft", "published")...))
	require.NoError(t, err)

	article := post.Extend("Article")
	article.Fields["summary"] = &schema.Field{
		Name: "summary",
		Type: &schema.TypeSpec{BaseType: schema.TypeText, Nullable: false},
	}
	_, err = enum.Declare(reg, article, "status", enum.Values(enum.Symbols("draft", "reviewed")...))
	require.NoError(t, err)

	transient := schema.NewResourceSchema("Draft")

	stmts, err := NewDDLGenerator(DialectSQLite).GenerateSchema([]*schema.ResourceSchema{transient, article, post})
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	// subtype-only columns are nullable, enum values are merged
	assert.Contains(t, stmts[0], `"summary" TEXT NULL`)
	assert.Contains(t, stmts[0], `CHECK ("status" IN ('draft', 'reviewed', 'published'))`)
	assert.NotContains(t, stmts[0], "drafts")
}

func TestDDLGenerator_SQLiteEnforcesCheck(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	reg := enum.NewRegistry()
	post := createPostSchema()
	_, err = enum.Declare(reg, post, "status", enum.Values(enum.Symbols("draft", "published")...), enum.AllowNil(false))
	require.NoError(t, err)

	stmt, err := NewDDLGenerator(DialectSQLite).GenerateCreateTable(post)
	require.NoError(t, err)
	_, err = db.Exec(stmt)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO posts (title, status) VALUES (?, ?)`, "ok", enum.Symbol("draft"))
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO posts (title, status) VALUES (?, ?)`, "bad", "retracted")
	assert.Error(t, err)

	_, err = db.Exec(`INSERT INTO posts (title, status) VALUES (?, NULL)`, "nil")
	assert.Error(t, err)

	var views int
	require.NoError(t, db.QueryRow(`SELECT views FROM posts WHERE title = 'ok'`).Scan(&views))
	assert.Equal(t, 0, views)
}

func TestParseDialect(t *testing.T) {
	for in, want := range map[string]Dialect{
		"pgx":      DialectPostgres,
		"postgres": DialectPostgres,
		"sqlite3":  DialectSQLite,
		"sqlite":   DialectSQLite,
	} {
		got, err := ParseDialect(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseDialect("mysql")
	assert.Error(t, err)
}

func TestTypeMapper_Literal(t *testing.T) {
	pg := NewTypeMapper(DialectPostgres)
	lite := NewTypeMapper(DialectSQLite)

	tests := []struct {
		value interface{}
		pg    string
		lite  string
	}{
		{nil, "NULL", "NULL"},
		{"O'Brien", "'O''Brien'", "'O''Brien'"},
		{enum.Symbol("live"), "'live'", "'live'"},
		{true, "TRUE", "1"},
		{int64(42), "42", "42"},
		{1.5, "1.5", "1.5"},
	}
	for _, tt := range tests {
		got, err := pg.Literal(tt.value)
		require.NoError(t, err)
		assert.Equal(t, tt.pg, got)

		got, err = lite.Literal(tt.value)
		require.NoError(t, err)
		assert.Equal(t, tt.lite, got)
	}

	_, err := pg.Literal([]int{1})
	assert.Error(t, err)
}

func TestEnumType(t *testing.T) {
	assert.Equal(t, schema.TypeString, EnumType(nil))
	assert.Equal(t, schema.TypeInt, EnumType([]interface{}{1, 2}))
	assert.Equal(t, schema.TypeFloat, EnumType([]interface{}{1, 2.5}))
	assert.Equal(t, schema.TypeBool, EnumType([]interface{}{true, false}))
	assert.Equal(t, schema.TypeString, EnumType([]interface{}{1, "two"}))
	assert.Equal(t, schema.TypeString, EnumType([]interface{}{enum.Symbol("a")}))
}
