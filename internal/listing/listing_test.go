package listing

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/repoquality/schema"
)

const sampleListing = `full_name,html_url,clone_url,stargazers_count,forks_count,created_at,updated_at,size,language,open_issues_count,default_branch
acme/widgets,https://github.com/acme/widgets,https://github.com/acme/widgets.git,1200,80,2015-03-04T05:06:07Z,2024-01-01T00:00:00Z,4096,Java,12,main
,,,,,,,,,,
acme/gadgets,https://github.com/acme/gadgets,,not-a-number,3.0,garbage,,10,Java,0,master
acme/third,https://github.com/acme/third,,1,1,,,1,Java,0,main
`

func TestParse(t *testing.T) {
	descs, err := Parse(strings.NewReader(sampleListing), 0)
	require.NoError(t, err)
	require.Len(t, descs, 3)

	first := descs[0]
	assert.Equal(t, "acme/widgets", first.FullName)
	assert.Equal(t, "https://github.com/acme/widgets.git", first.CloneURL)
	assert.Equal(t, 1200, first.Stars)
	assert.Equal(t, 80, first.Forks)
	assert.Equal(t, time.Date(2015, 3, 4, 5, 6, 7, 0, time.UTC), first.CreatedAt)
	assert.Equal(t, 4096, first.SizeKB)
	assert.Equal(t, 12, first.OpenIssues)
	assert.Equal(t, "main", first.DefaultBranch)

	second := descs[1]
	assert.Equal(t, 0, second.Stars)
	assert.Equal(t, 3, second.Forks)
	assert.True(t, second.CreatedAt.IsZero())
}

func TestParseLimit(t *testing.T) {
	descs, err := Parse(strings.NewReader(sampleListing), 2)
	require.NoError(t, err)
	assert.Len(t, descs, 2)
}

func TestParseMissingFullName(t *testing.T) {
	_, err := Parse(strings.NewReader("name,stars\na,1\n"), 0)
	assert.ErrorIs(t, err, ErrMissingFullName)
}

func TestParseEmpty(t *testing.T) {
	descs, err := Parse(strings.NewReader(""), 0)
	require.NoError(t, err)
	assert.Empty(t, descs)
}

func TestWriteThenRead(t *testing.T) {
	descs := []schema.RepositoryDescriptor{{
		FullName:  "acme/widgets",
		CloneURL:  "https://github.com/acme/widgets.git",
		Stars:     5,
		CreatedAt: time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC),
		Language:  "Java",
	}}
	path := filepath.Join(t.TempDir(), "nested", "repositories.csv")
	require.NoError(t, Write(path, descs))

	got, err := Read(path, 0)
	require.NoError(t, err)
	assert.Equal(t, descs, got)
}

func TestFormatHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Format(&buf, nil))
	assert.Equal(t, strings.Join(Columns, ",")+"\n", buf.String())
}
