package util

import (
	"cmp"
	"iter"
	"slices"

	"github.com/hashicorp/go-set/v3"
)

func SetFromSeq[V comparable](s iter.Seq[V], size int) *set.Set[V] {
	newSet := set.New[V](size)
	for item := range s {
		newSet.Insert(item)
	}
	return newSet
}

// SortedUnique collects s into a sorted slice without duplicates
func SortedUnique[V cmp.Ordered](s iter.Seq[V]) []V {
	items := SetFromSeq(s, 0).Slice()
	slices.Sort(items)
	return items
}
