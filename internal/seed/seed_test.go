package seed

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func TestLoadAttachesBodies(t *testing.T) {
	b, err := Load()
	require.NoError(t, err)
	require.Len(t, b.Tutorials, 3)
	require.Len(t, b.Examples, 2)

	seen := map[string]bool{}
	for _, tut := range b.Tutorials {
		assert.NotEmpty(t, tut.Content, tut.Slug)
		assert.Regexp(t, slugPattern, tut.Slug)
		assert.False(t, seen[tut.Slug], "duplicate slug %s", tut.Slug)
		seen[tut.Slug] = true
	}
	for _, ex := range b.Examples {
		assert.Contains(t, ex.Code, "package main", ex.Slug)
		assert.Equal(t, "go", ex.Language)
	}
}

func TestBaselineGating(t *testing.T) {
	b := MustLoad()
	free := map[string]bool{}
	for _, tut := range b.Tutorials {
		free[tut.Slug] = tut.IsFree
	}
	assert.True(t, free["getting-started"])
	assert.True(t, free["variables-and-types"])
	assert.False(t, free["goroutines-and-channels"])
}

func TestLoadReturnsCopies(t *testing.T) {
	first := MustLoad()
	first.Tutorials[0].Title = "changed"
	second := MustLoad()
	assert.NotEqual(t, "changed", second.Tutorials[0].Title)
}
