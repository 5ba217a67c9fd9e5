package tags

import (
	"image/color"
	"sync"
	"testing"

	"elec-takeoff/internal/takeoff"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupIsCaseInsensitive(t *testing.T) {
	r := NewRegistry(takeoff.Tag{Code: "A1", Name: "Duplex receptacle", Category: "Receptacles"})

	tag, ok := r.Lookup("  a1 ")
	require.True(t, ok)
	assert.Equal(t, "Duplex receptacle", tag.Name)
	assert.NotEmpty(t, tag.ID)

	_, ok = r.Lookup("B2")
	assert.False(t, ok)
}

func TestCategoryFallsBackToPrefix(t *testing.T) {
	r := NewRegistry(
		takeoff.Tag{Code: "A1", Category: "Receptacles"},
		takeoff.Tag{Code: "LX"},
	)

	assert.Equal(t, "Receptacles", r.Category("a1"))
	assert.Equal(t, "Lighting", r.Category("LX"))
	assert.Equal(t, "Lighting", r.Category("L12"))
	assert.Equal(t, FallbackCategory, r.Category("Z9"))
	assert.Equal(t, FallbackCategory, r.Category(""))
}

func TestLongestPrefixWins(t *testing.T) {
	rules := CategoryRules{
		{Prefix: "L", Category: "Lighting"},
		{Prefix: "LP", Category: "Panels"},
	}
	assert.Equal(t, "Panels", rules.Infer("LP-1"))
	assert.Equal(t, "Lighting", rules.Infer("L1"))
}

func TestRemovedTagFallsBack(t *testing.T) {
	r := NewRegistry(takeoff.Tag{Code: "A1", Name: "Duplex", Color: "#00ff00"})
	fallback := color.RGBA{R: 1, G: 2, B: 3, A: 255}

	assert.Equal(t, color.RGBA{G: 255, A: 255}, r.Color("A1", fallback))

	r.Remove("a1")
	assert.Equal(t, fallback, r.Color("A1", fallback))
	assert.Equal(t, "A1", r.Name("A1"))
}

func TestAllSortedAndEmptyCodeIgnored(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Put(takeoff.Tag{Code: "  "}))
	r.Put(takeoff.Tag{Code: "b2"})
	r.Put(takeoff.Tag{Code: "A1"})

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "A1", all[0].Code)
	assert.Equal(t, "b2", all[1].Code)
}

func TestReplaceIsAtomic(t *testing.T) {
	set := []takeoff.Tag{{Code: "A1", Name: "Duplex"}, {Code: "l1", Name: "Troffer"}, {Code: " "}}
	r := NewRegistry(set...)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			r.Replace(set)
		}
		close(stop)
	}()

	misses := 0
	for done := false; !done; {
		select {
		case <-stop:
			done = true
		default:
			if _, ok := r.Lookup("a1"); !ok {
				misses++
			}
		}
	}
	wg.Wait()
	assert.Zero(t, misses, "lookups never see a half-built tag set")
	assert.Equal(t, 2, r.Len())
	l1, ok := r.Lookup("L1")
	require.True(t, ok)
	assert.NotEmpty(t, l1.ID)
}
