package commands

import (
	"bytes"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `
models:
  - name: Record
    root: true
  - name: Post
    parent: Record
    persistent: true
    table: posts
    fields:
      - {name: title, type: string}
    enums:
      - field: status
        symbols: [draft, published, archived]
        aliases: [draft, live, archived]
        allow_nil: false
  - name: Article
    parent: Post
  - name: Review
    enums:
      - field: rank
        range: {from: 1, to: 3}
        labels: [Bad, Fine, Great]
`

const testLocale = `
en:
  post:
    status:
      draft: Work in progress
fr:
  post:
    status:
      draft: Brouillon
      live: En ligne
`

const testRecords = `
records:
  - model: Article
    attributes: {title: Hello, status: published}
  - model: Post
    attributes: {title: Second, status: draft}
  - model: Post
    attributes: {title: Third, status: published}
`

type fixture struct {
	dir      string
	config   string
	manifest string
	records  string
	dbPath   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })
	t.Setenv("ENUMCTL_LOG_LEVEL", "")

	dir := t.TempDir()
	f := &fixture{
		dir:      dir,
		config:   filepath.Join(dir, "enumctl.yaml"),
		manifest: filepath.Join(dir, "models.yaml"),
		records:  filepath.Join(dir, "records.yaml"),
		dbPath:   filepath.Join(dir, "blog.db"),
	}

	locale := filepath.Join(dir, "locales.yml")
	write(t, locale, testLocale)
	write(t, f.manifest, testManifest)
	write(t, f.records, testRecords)
	write(t, f.config, "locale_files: ["+locale+"]\ndatabase:\n  driver: sqlite3\n  url: "+f.dbPath+"\nlog:\n  level: error\n")
	return f
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func (f *fixture) run(args ...string) (string, string, error) {
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", f.config, "--no-color"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "enumctl", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"version", "resolve", "check", "scopes", "options", "schema"} {
		assert.True(t, names[want], "missing command %s", want)
	}

	for _, flag := range []string{"config", "locale", "verbose", "no-color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "missing flag %s", flag)
	}
}

func TestVersionCommand(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	Version = "1.0.0-test"
	GoVersion = "go1.23"

	cmd := NewVersionCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)

	assert.Contains(t, out.String(), "enumctl version: 1.0.0-test")
	assert.Contains(t, out.String(), "Go version: go1.23")
}

func TestResolveCommand(t *testing.T) {
	f := newFixture(t)

	out, _, err := f.run("resolve", f.manifest)
	require.NoError(t, err)

	assert.Contains(t, out, "Post.status")
	assert.Contains(t, out, "Work in progress")
	assert.Contains(t, out, "Live")
	assert.Contains(t, out, "enum.Symbol")
	assert.Contains(t, out, "draft_status?, live_status?, archived_status?")
	assert.Contains(t, out, "draft_statuss, live_statuss, archived_statuss")
	assert.Contains(t, out, "statuses, status_aliases, status_labels, status_options")

	assert.Contains(t, out, "Review.rank")
	assert.Contains(t, out, "Great")
	assert.NotContains(t, out, "bad_ranks")
}

func TestResolveCommand_Locale(t *testing.T) {
	f := newFixture(t)

	out, _, err := f.run("resolve", f.manifest, "--locale", "fr")
	require.NoError(t, err)
	assert.Contains(t, out, "Brouillon")
	assert.Contains(t, out, "En ligne")
	assert.Contains(t, out, "Archived")
}

func TestResolveCommand_DeclarationError(t *testing.T) {
	f := newFixture(t)
	bad := filepath.Join(f.dir, "bad.yaml")
	write(t, bad, "models:\n  - name: Post\n    enums:\n      - {field: status, symbols: [a, b], labels: [A]}\n")

	_, stderr, err := f.run("resolve", bad)
	require.Error(t, err)
	var r *reportedError
	assert.True(t, errors.As(err, &r))
	assert.Contains(t, stderr, "DECLARATION FAILED")
	assert.Contains(t, stderr, "labels length 1")
}

func TestCheckCommand(t *testing.T) {
	f := newFixture(t)

	out, _, err := f.run("check", f.manifest, f.records)
	require.NoError(t, err)
	assert.Contains(t, out, "Article #1")
	assert.Contains(t, out, "status: published (enum.Symbol) Live")
	assert.Contains(t, out, "✓ valid")

	invalid := filepath.Join(f.dir, "invalid.yaml")
	write(t, invalid, "records:\n  - model: Post\n    attributes: {title: X, status: retracted}\n  - model: Post\n    attributes: {title: Y}\n")

	out, _, err = f.run("check", f.manifest, invalid)
	require.Error(t, err)
	assert.ErrorIs(t, err, errInvalidRecords)
	assert.Contains(t, err.Error(), "2 of 2")
	assert.Contains(t, out, "INVALID RECORD: Post #1")
	assert.Contains(t, out, "status: is not included in the list")
}

func TestScopesCommand_SQL(t *testing.T) {
	f := newFixture(t)

	out, _, err := f.run("scopes", f.manifest)
	require.NoError(t, err)
	assert.Contains(t, out, "live_statuss")
	assert.Contains(t, out, "SELECT * FROM posts WHERE status = $1")
	assert.Contains(t, out, "[published]")
	assert.NotContains(t, out, "Rows")
	assert.NotContains(t, out, "Review")

	_, _, err = f.run("scopes", f.manifest, "--seed", f.records)
	assert.ErrorContains(t, err, "--seed requires --execute")
}

func TestScopesCommand_ExecuteWithSeed(t *testing.T) {
	f := newFixture(t)

	db, err := sql.Open("sqlite3", f.dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE posts (id INTEGER PRIMARY KEY, title TEXT, status TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, _, err := f.run("scopes", f.manifest, "--execute", "--seed", f.records)
	require.NoError(t, err)

	counts := map[string]string{}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 1 && strings.HasSuffix(fields[1], "_statuss") {
			counts[fields[1]] = fields[len(fields)-1]
		}
	}
	assert.Equal(t, map[string]string{
		"draft_statuss":    "1",
		"live_statuss":     "2",
		"archived_statuss": "0",
	}, counts)
}

func TestOptionsCommand(t *testing.T) {
	f := newFixture(t)

	out, _, err := f.run("options", f.manifest, "Article", "status", "--current", "published", "--exclude", "archived")
	require.NoError(t, err)
	assert.Contains(t, out, "Work in progress")
	assert.NotContains(t, out, "Archived")

	var liveLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Live") {
			liveLine = line
		}
	}
	assert.Contains(t, liveLine, "✓")

	out, _, err = f.run("options", f.manifest, "Post", "status", "--radio", "--id", "post_status")
	require.NoError(t, err)
	assert.Contains(t, out, "post_status_draft")
	assert.Contains(t, out, "post_status_archived")
}

func TestOptionsCommand_Unknown(t *testing.T) {
	f := newFixture(t)

	_, stderr, err := f.run("options", f.manifest, "Pots", "status")
	require.Error(t, err)
	assert.Contains(t, stderr, "UNKNOWN MODEL: Pots")
	assert.Contains(t, stderr, "Did you mean: Post")

	_, stderr, err = f.run("options", f.manifest, "Post", "stauts")
	require.Error(t, err)
	assert.Contains(t, stderr, "UNKNOWN FIELD: Post.stauts")
	assert.Contains(t, stderr, "Did you mean: status?")

	_, _, err = f.run("options", f.manifest, "Post", "title")
	require.Error(t, err)
}

func TestConfigError(t *testing.T) {
	f := newFixture(t)
	write(t, f.config, "database:\n  driver: mysql\n")

	_, stderr, err := f.run("resolve", f.manifest)
	require.Error(t, err)
	assert.Contains(t, stderr, "CONFIGURATION ERROR")
	assert.Contains(t, stderr, "mysql")
}

func TestSchemaCommand(t *testing.T) {
	f := newFixture(t)

	out, _, err := f.run("schema", f.manifest, "--dialect", "pgx")
	require.NoError(t, err)
	assert.Contains(t, out, `CREATE TABLE IF NOT EXISTS "posts"`)
	assert.Contains(t, out, `"status" VARCHAR(255) NOT NULL CHECK ("status" IN ('draft', 'published', 'archived'))`)
	assert.NotContains(t, out, "reviews")

	_, _, err = f.run("schema", f.manifest, "--dialect", "mysql")
	assert.ErrorContains(t, err, "unsupported dialect")
}

func TestSchemaCommand_ApplyThenScopes(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.run("schema", f.manifest, "--apply")
	require.NoError(t, err)

	out, _, err := f.run("scopes", f.manifest, "--execute", "--seed", f.records)
	require.NoError(t, err)
	assert.Contains(t, out, "live_statuss")

	db, err := sql.Open("sqlite3", f.dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO posts (title, status) VALUES ('x', 'retracted')`)
	assert.Error(t, err)
}
