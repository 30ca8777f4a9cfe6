// SPDX-License-Identifier: AGPL-3.0-only
package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLookupActor(t *testing.T) {
	def, err := lookupActor("telegram", "posts")
	require.NoError(t, err)
	assert.Equal(t, "73JZk4CeKcDsWoJQu", def.ID)
	assert.True(t, def.Batch)

	// Empty name falls back to the platform default.
	def, err = lookupActor("x", "")
	require.NoError(t, err)
	assert.Equal(t, "CJdippxWmn9uRfooo", def.ID)

	_, err = lookupActor("telegram", "nope")
	assert.Error(t, err)
	_, err = lookupActor("myspace", "")
	assert.Error(t, err)
}

func TestActorInputs(t *testing.T) {
	targets := []Target{
		{Kind: KindChannel, Value: "alpha"},
		{Kind: KindChannel, Value: "beta"},
	}

	def, err := lookupActor("telegram", "posts")
	require.NoError(t, err)
	in := def.Input(targets, Options{Limit: 50})
	assert.Equal(t, []string{"alpha", "beta"}, in["channels"])
	assert.Equal(t, 50, in["maxPosts"])
	assert.NotContains(t, in, "postsFromDate")

	in = def.Input(targets, Options{Limit: 50, Days: 7})
	assert.Contains(t, in, "postsFromDate")

	def, err = lookupActor("x", "search")
	require.NoError(t, err)
	in = def.Input([]Target{{Kind: KindSearch, Value: "golang"}}, Options{Limit: 20, Sort: "Latest", Lang: "en"})
	assert.Equal(t, []string{"golang"}, in["searchTerms"])
	assert.Equal(t, "en", in["tweetLanguage"])
}

func TestApifyPlanBatchActor(t *testing.T) {
	b := NewApifyBackend(nil, zap.NewNop().Sugar())

	targets := []Target{
		{Kind: KindChannel, Value: "alpha"},
		{Kind: KindChannel, Value: "beta"},
	}

	specs, err := b.Plan(targets, Options{Platform: "telegram", Actor: "posts"})
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Len(t, specs[0].Targets, 2)
}

func TestApifyPlanSingleActor(t *testing.T) {
	b := NewApifyBackend(nil, zap.NewNop().Sugar())

	targets := []Target{
		{Kind: KindHandle, Value: "one"},
		{Kind: KindHandle, Value: "two"},
	}

	specs, err := b.Plan(targets, Options{Platform: "x", Actor: "ppr"})
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "x:one", specs[0].Label)
	assert.Equal(t, "x:two", specs[1].Label)
}

func TestApifyPlanNoTargets(t *testing.T) {
	b := NewApifyBackend(nil, zap.NewNop().Sugar())
	_, err := b.Plan(nil, Options{Platform: "telegram"})
	assert.Error(t, err)
}

func TestTelegramPlanRejectsNonChannels(t *testing.T) {
	b := NewTelegramBackend(1, "hash", "session.json", "", zap.NewNop().Sugar())

	_, err := b.Plan([]Target{{Kind: KindHandle, Value: "x"}}, Options{})
	assert.Error(t, err)

	specs, err := b.Plan([]Target{{Kind: KindChannel, Value: "chan"}}, Options{})
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "telegram:chan", specs[0].Label)
}

func TestParseAbbrevCount(t *testing.T) {
	cases := map[string]int{
		"841":   841,
		"1,204": 1204,
		"1.2K":  1200,
		"3.4M":  3_400_000,
	}
	for in, want := range cases {
		got, err := parseAbbrevCount(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseAbbrevCount("lots")
	assert.Error(t, err)
}
