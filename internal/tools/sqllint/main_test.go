package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGo(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLintFileAcceptsMarkedQueries(t *testing.T) {
	dir := t.TempDir()
	path := writeGo(t, dir, "q.go", "package q\n\nconst QOne = `--sql 11111111-2222-4333-8444-555555555555\nselect 1;\n`\n\nconst Label = \"please update your profile\"\n")

	l := newLinter()
	require.NoError(t, l.lintFile(path))
	assert.Empty(t, l.violations)
}

func TestLintFileFlagsMissingMarker(t *testing.T) {
	dir := t.TempDir()
	path := writeGo(t, dir, "q.go", "package q\n\nconst QBad = `\nselect id from users;\n`\n\nvar QWrong = \"--sql not-a-uuid\\ndelete from users\"\n")

	l := newLinter()
	require.NoError(t, l.lintFile(path))
	require.Len(t, l.violations, 2)
	assert.Equal(t, "QBad", l.violations[0].name)
	assert.Equal(t, 3, l.violations[0].line)
	assert.Equal(t, "QWrong", l.violations[1].name)
}

func TestLintPathFlagsDuplicateMarkers(t *testing.T) {
	dir := t.TempDir()
	marked := "`--sql 11111111-2222-4333-8444-555555555555\nselect 1;\n`"
	writeGo(t, dir, "a.go", "package q\n\nconst QA = "+marked+"\n")
	writeGo(t, dir, "b.go", "package q\n\nconst QB = "+marked+"\n")

	l := newLinter()
	require.NoError(t, l.lintPath(dir))
	require.Len(t, l.violations, 1)
	assert.Equal(t, "QB", l.violations[0].name)
	assert.True(t, strings.Contains(l.violations[0].message, "already used"))
}

func TestLintPathSkipsUnderscoreDirsAndTests(t *testing.T) {
	dir := t.TempDir()
	hidden := filepath.Join(dir, "_reference")
	require.NoError(t, os.Mkdir(hidden, 0o755))
	writeGo(t, hidden, "x.go", "package x\n\nconst Q = `select 1`\n")
	writeGo(t, dir, "x_test.go", "package q\n\nconst Q = `select 1`\n")

	l := newLinter()
	require.NoError(t, l.lintPath(dir))
	assert.Empty(t, l.violations)
}
