package registry

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndList(t *testing.T) {
	r := New()

	first := NewSource(SourceTypeText, "Note1", "", "The sky is blue.")
	second := NewSource(SourceTypeURL, "Docs", "https://example.com", "Some page content")
	r.Add(first)
	r.Add(second)

	got := r.List()
	require.Len(t, got, 2)
	assert.Equal(t, "Note1", got[0].Title)
	assert.Equal(t, SourceTypeText, got[0].Type)
	assert.Equal(t, "Docs", got[1].Title)
	assert.Equal(t, "https://example.com", got[1].Origin)
	assert.NotEqual(t, got[0].ID, got[1].ID)
}

func TestListReturnsCopy(t *testing.T) {
	r := New()
	r.Add(NewSource(SourceTypeText, "a", "", "x"))

	got := r.List()
	got[0].Title = "mutated"

	assert.Equal(t, "a", r.List()[0].Title)
}

func TestRemove(t *testing.T) {
	t.Run("removes exactly one entry", func(t *testing.T) {
		r := New()
		keep := NewSource(SourceTypeText, "keep", "", "x")
		drop := NewSource(SourceTypeText, "drop", "", "y")
		r.Add(keep)
		r.Add(drop)

		removed, err := r.Remove(drop.ID)
		require.NoError(t, err)
		assert.Equal(t, "drop", removed.Title)

		remaining := r.List()
		require.Len(t, remaining, 1)
		assert.Equal(t, keep.ID, remaining[0].ID)
	})

	t.Run("unknown id leaves registry unchanged", func(t *testing.T) {
		r := New()
		r.Add(NewSource(SourceTypeText, "a", "", "x"))

		_, err := r.Remove("no-such-id")
		assert.ErrorIs(t, err, ErrSourceNotFound)
		assert.Equal(t, 1, r.Len())
	})
}

func TestClear(t *testing.T) {
	r := New()
	r.Add(NewSource(SourceTypeText, "a", "", "x"))
	r.Add(NewSource(SourceTypePDF, "b", "", "y"))

	r.Clear()

	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.List())
}

func TestExcerptTruncation(t *testing.T) {
	t.Run("short content kept verbatim", func(t *testing.T) {
		assert.Equal(t, "short", Excerpt("short"))
	})

	t.Run("long content truncated to cap plus ellipsis", func(t *testing.T) {
		long := strings.Repeat("a", 10000)
		got := Excerpt(long)
		assert.Len(t, []rune(got), ExcerptLimit+len([]rune(ExcerptEllipsis)))
		assert.True(t, strings.HasSuffix(got, ExcerptEllipsis))
	})

	t.Run("content at exactly the cap is not marked", func(t *testing.T) {
		exact := strings.Repeat("b", ExcerptLimit)
		assert.Equal(t, exact, Excerpt(exact))
	})
}

func TestSourceTypeValid(t *testing.T) {
	assert.True(t, SourceTypePDF.Valid())
	assert.True(t, SourceTypeText.Valid())
	assert.True(t, SourceTypeURL.Valid())
	assert.False(t, SourceType("audio").Valid())
}

func TestConcurrentMutation(t *testing.T) {
	r := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Add(NewSource(SourceTypeText, "n", "", "c"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, r.Len())
}
