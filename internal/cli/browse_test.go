package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/virtuallist/internal/config"
)

func TestBrowse_RequiresTerminal(t *testing.T) {
	t.Setenv("VLIST_HOME", t.TempDir())
	t.Cleanup(config.ResetGlobalConfigForTest)

	orig := isTerminal
	isTerminal = func(*os.File) bool { return false }
	t.Cleanup(func() { isTerminal = orig })

	var buf bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"browse", "--generate", "10"})

	require.ErrorIs(t, cmd.Execute(), errNotTerminal)
}

func TestParagraphs(t *testing.T) {
	text := "first line\nsecond line\n\n\r\nthird\n   \nfourth\nfifth\n"

	got := paragraphs(text)
	require.Len(t, got, 3)
	assert.Equal(t, entry{ID: "p0", Text: "first line\nsecond line"}, got[0])
	assert.Equal(t, entry{ID: "p1", Text: "third"}, got[1])
	assert.Equal(t, entry{ID: "p2", Text: "fourth\nfifth"}, got[2])

	assert.Empty(t, paragraphs("\n\n  \n"))
}

func TestGenerateEntries(t *testing.T) {
	got := generateEntries(10, 5)
	require.Len(t, got, 5)

	ids := make(map[string]bool)
	for i, e := range got {
		ids[e.ID] = true
		lines := strings.Count(e.Text, "\n") + 1
		assert.GreaterOrEqual(t, lines, 1)
		assert.LessOrEqual(t, lines, 5)
		assert.True(t, strings.HasPrefix(e.Text, "item "), "entry %d", i)
	}
	assert.Len(t, ids, 5, "ids are unique")
	assert.Equal(t, "g10", got[0].ID)
}

func TestBrowseItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\n\nb\nc\n"), 0o600))

	items, err := browseItems([]string{path}, browseParams{})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = browseItems(nil, browseParams{generate: 7})
	require.NoError(t, err)
	assert.Len(t, items, 7)

	items, err = browseItems(nil, browseParams{infinite: true, page: 3})
	require.NoError(t, err)
	assert.Len(t, items, 3)

	_, err = browseItems(nil, browseParams{})
	require.Error(t, err)

	_, err = browseItems([]string{filepath.Join(t.TempDir(), "missing")}, browseParams{})
	require.Error(t, err)
}
