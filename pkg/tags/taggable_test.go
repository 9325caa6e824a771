package tags

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaggable_AddRemoveToggle(t *testing.T) {
	var tg Taggable

	tg.AddTags(1, 3, 5)
	assert.True(t, tg.HasTags(1, 3, 5))
	assert.True(t, tg.HasTags())
	assert.Equal(t, 3, tg.Tags().Count())

	tg.RemoveTag(3)
	assert.False(t, tg.HasTag(3))
	assert.True(t, tg.HasAnyOfTags(3, 5))
	assert.True(t, tg.HasNoneOfTags(0, 2, 3))

	tg.ToggleTags(1, 2)
	assert.Equal(t, []int{2, 5}, tg.Tags().Indices())

	tg.ClearTags()
	assert.True(t, tg.Tags().Empty())
}

func TestTaggable_OutOfRangeIgnored(t *testing.T) {
	var tg Taggable
	tg.AddTags(-1, MaxTags, MaxTags+5)
	assert.True(t, tg.Tags().Empty())
	assert.False(t, tg.HasTag(-1))
	assert.False(t, tg.HasTag(MaxTags))
}

func TestTaggable_CopyMergeMoveSwap(t *testing.T) {
	var a, b Taggable
	a.AddTags(0, 1)
	b.AddTags(1, 2)

	var c Taggable
	c.CopyTagsFrom(&a)
	assert.True(t, c.HasSameTags(&a))

	c.MergeTagsFrom(&b)
	assert.Equal(t, SetOf(0, 1, 2), c.Tags())
	assert.True(t, c.IsSupersetOf(&a))
	assert.False(t, a.IsSupersetOf(&c))

	c.IntersectTagsWith(&b)
	assert.Equal(t, SetOf(1, 2), c.Tags())

	var d Taggable
	d.MoveTagsFrom(&c)
	assert.Equal(t, SetOf(1, 2), d.Tags())
	assert.True(t, c.Tags().Empty())

	d.MoveTagsFrom(&d)
	assert.Equal(t, SetOf(1, 2), d.Tags())

	a.SwapTagsWith(&b)
	assert.Equal(t, SetOf(1, 2), a.Tags())
	assert.Equal(t, SetOf(0, 1), b.Tags())
}

func TestHaveSameTags(t *testing.T) {
	var a, b Taggable
	a.AddTags(0)
	b.AddTags(0, 1)

	assert.False(t, HaveSameTags(&a, &b))
	assert.True(t, HaveAnyCommonTag(&a, &b))

	b.RemoveTag(1)
	assert.True(t, HaveSameTags(&a, &b))

	var empty1, empty2 Taggable
	assert.True(t, HaveSameTags(&empty1, &empty2))
	assert.False(t, HaveAnyCommonTag(&empty1, &empty2))
}

func TestKeysHelpers(t *testing.T) {
	r := NewRegistry(MaxTags)
	var tg Taggable

	require.NoError(t, AddTag[intTag](r, &tg))
	assert.True(t, HasTag[intTag](r, &tg))
	assert.False(t, HasTag[floatTag](r, &tg))

	require.NoError(t, AddKeys(r, &tg, NameKey("Audio"), NameKey("Mono")))
	assert.True(t, HasKeys(r, &tg, NameKey("Audio"), TypeKey[intTag]()))

	RemoveKeys(r, &tg, NameKey("Audio"), NameKey("never-registered"))
	assert.False(t, HasKeys(r, &tg, NameKey("Audio")))
	assert.True(t, HasKeys(r, &tg, NameKey("Mono")))
}

func TestKeysHelpers_CapacityError(t *testing.T) {
	r := NewRegistry(1)
	var tg Taggable

	require.NoError(t, AddKeys(r, &tg, NameKey("one")))
	err := AddKeys(r, &tg, NameKey("two"))
	assert.True(t, IsCapacityExceeded(err))
	assert.Equal(t, SetOf(0), tg.Tags())
}

func TestApplicator(t *testing.T) {
	r := NewRegistry(MaxTags)
	a := NewApplicator(r)

	require.NoError(t, a.Register(NameKey("Float"), NameKey("Int")))
	assert.Equal(t, []string{"Float", "Int"}, a.Names())

	var tg Taggable
	assert.True(t, a.Apply("Int", &tg))
	assert.True(t, HasKeys(r, &tg, NameKey("Int")))
	assert.False(t, a.Apply("Bool", &tg))

	r.Unregister(NameKey("Float"))
	assert.False(t, a.Apply("Float", &tg))
}

func TestSetProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	index := gen.IntRange(0, MaxTags-1)

	properties.Property("add is idempotent", prop.ForAll(
		func(raw uint64, i int) bool {
			s := Set(raw)
			return s.With(i).With(i) == s.With(i)
		},
		gen.UInt64(), index,
	))

	properties.Property("toggle twice is identity", prop.ForAll(
		func(raw uint64, i int) bool {
			s := Set(raw)
			return s.Toggle(i).Toggle(i) == s
		},
		gen.UInt64(), index,
	))

	properties.Property("equality is symmetric", prop.ForAll(
		func(x, y uint64) bool {
			var a, b Taggable
			a.SetTags(Set(x))
			b.SetTags(Set(y))
			return HaveSameTags(&a, &b) == HaveSameTags(&b, &a)
		},
		gen.UInt64(), gen.UInt64(),
	))

	properties.Property("a strict superset is never equal", prop.ForAll(
		func(raw uint64, i int) bool {
			s := Set(raw).Without(i)
			return !s.Equal(s.With(i)) && s.With(i).IsSupersetOf(s)
		},
		gen.UInt64(), index,
	))

	properties.Property("indices round-trip", prop.ForAll(
		func(raw uint64) bool {
			s := Set(raw)
			return SetOf(s.Indices()...) == s && len(s.Indices()) == s.Count()
		},
		gen.UInt64(),
	))

	properties.Property("swap twice is identity", prop.ForAll(
		func(x, y uint64) bool {
			var a, b Taggable
			a.SetTags(Set(x))
			b.SetTags(Set(y))
			a.SwapTagsWith(&b)
			a.SwapTagsWith(&b)
			return a.Tags() == Set(x) && b.Tags() == Set(y)
		},
		gen.UInt64(), gen.UInt64(),
	))

	properties.TestingRun(t)
}

func TestSetString(t *testing.T) {
	assert.Equal(t, "{}", Set(0).String())
	assert.Equal(t, "{0,3,63}", SetOf(63, 0, 3).String())
}
