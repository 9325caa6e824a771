package tags

// Tagged is anything that exposes a tag set.
type Tagged interface {
	Tags() Set
}

// Taggable gives an embedding type a tag set with in-place algebra.
// It is not synchronized; the owner guards it.
type Taggable struct {
	tags Set
}

// Tags returns the current set.
func (t *Taggable) Tags() Set {
	return t.tags
}

// SetTags replaces the set.
func (t *Taggable) SetTags(s Set) {
	t.tags = s
}

func (t *Taggable) AddTag(idx int)    { t.tags = t.tags.With(idx) }
func (t *Taggable) RemoveTag(idx int) { t.tags = t.tags.Without(idx) }
func (t *Taggable) ToggleTag(idx int) { t.tags = t.tags.Toggle(idx) }

func (t *Taggable) AddTags(indices ...int) {
	for _, i := range indices {
		t.AddTag(i)
	}
}

func (t *Taggable) RemoveTags(indices ...int) {
	for _, i := range indices {
		t.RemoveTag(i)
	}
}

func (t *Taggable) ToggleTags(indices ...int) {
	for _, i := range indices {
		t.ToggleTag(i)
	}
}

// ClearTags removes every tag.
func (t *Taggable) ClearTags() {
	t.tags = 0
}

func (t *Taggable) HasTag(idx int) bool {
	return t.tags.Has(idx)
}

// HasTags reports whether every index is carried. An empty argument list is
// trivially satisfied.
func (t *Taggable) HasTags(indices ...int) bool {
	return t.tags.HasAll(SetOf(indices...))
}

func (t *Taggable) HasAnyOfTags(indices ...int) bool {
	return t.tags.HasAny(SetOf(indices...))
}

func (t *Taggable) HasNoneOfTags(indices ...int) bool {
	return t.tags.HasNone(SetOf(indices...))
}

// HasSameTags reports exact equality with other.
func (t *Taggable) HasSameTags(other Tagged) bool {
	return t.tags == other.Tags()
}

// IsSupersetOf reports whether t carries every tag of other.
func (t *Taggable) IsSupersetOf(other Tagged) bool {
	return t.tags.IsSupersetOf(other.Tags())
}

// CopyTagsFrom overwrites t with the tags of other.
func (t *Taggable) CopyTagsFrom(other Tagged) {
	t.tags = other.Tags()
}

// MergeTagsFrom unions the tags of other into t.
func (t *Taggable) MergeTagsFrom(other Tagged) {
	t.tags |= other.Tags()
}

// IntersectTagsWith keeps only the tags t shares with other.
func (t *Taggable) IntersectTagsWith(other Tagged) {
	t.tags &= other.Tags()
}

// MoveTagsFrom transfers the tags of other to t and clears other.
func (t *Taggable) MoveTagsFrom(other *Taggable) {
	if t == other {
		return
	}
	t.tags = other.tags
	other.tags = 0
}

// SwapTagsWith exchanges the sets of t and other.
func (t *Taggable) SwapTagsWith(other *Taggable) {
	t.tags, other.tags = other.tags, t.tags
}

// HaveSameTags reports whether a and b carry exactly the same tags.
func HaveSameTags(a, b Tagged) bool {
	return a.Tags() == b.Tags()
}

// HaveAnyCommonTag reports whether a and b share at least one tag.
func HaveAnyCommonTag(a, b Tagged) bool {
	return a.Tags().HasAny(b.Tags())
}

// AddKeys tags t with every key, registering keys in r as needed.
func AddKeys(r *Registry, t *Taggable, keys ...Key) error {
	s, err := r.SetOf(keys...)
	if err != nil {
		return err
	}
	t.tags |= s
	return nil
}

// RemoveKeys clears every registered key from t. Unregistered keys are
// ignored.
func RemoveKeys(r *Registry, t *Taggable, keys ...Key) {
	for _, k := range keys {
		if idx, ok := r.Peek(k); ok {
			t.RemoveTag(idx)
		}
	}
}

// HasKeys reports whether t carries every key. A key that was never
// registered cannot be carried.
func HasKeys(r *Registry, t Tagged, keys ...Key) bool {
	for _, k := range keys {
		idx, ok := r.Peek(k)
		if !ok || !t.Tags().Has(idx) {
			return false
		}
	}
	return true
}

// AddTag tags t with marker type T.
func AddTag[T any](r *Registry, t *Taggable) error {
	return AddKeys(r, t, TypeKey[T]())
}

// HasTag reports whether t carries marker type T.
func HasTag[T any](r *Registry, t Tagged) bool {
	return HasKeys(r, t, TypeKey[T]())
}
