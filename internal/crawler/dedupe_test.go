package crawler

import (
	"math/rand/v2"
	"reflect"
	"sort"
	"testing"
)

func TestDedupeAndShuffle(t *testing.T) {
	a := []string{"/h/1", "/h/2", "/h/3", "/h/4", "/h/5"}
	b := []string{"/h/3", "/h/4", "/h/5", "/h/6", "/h/7"}

	worklist := DedupeAndShuffle(rand.New(rand.NewPCG(1, 2)), a, b)

	if len(worklist) != 7 {
		t.Fatalf("Expected 7 unique URLs, got %d: %v", len(worklist), worklist)
	}

	seen := make(map[string]bool)
	for _, u := range worklist {
		if seen[u] {
			t.Errorf("Duplicate URL in worklist: %s", u)
		}
		seen[u] = true
	}

	sorted := append([]string(nil), worklist...)
	sort.Strings(sorted)
	expected := []string{"/h/1", "/h/2", "/h/3", "/h/4", "/h/5", "/h/6", "/h/7"}
	if !reflect.DeepEqual(sorted, expected) {
		t.Errorf("Worklist contents = %v, want %v", sorted, expected)
	}
}

func TestDedupeAndShuffleExactMatch(t *testing.T) {
	// No normalization: these are all distinct
	links := []string{"/h/1", "/h/1/", "/H/1", "/h/1?a=1&b=2", "/h/1?b=2&a=1"}

	worklist := DedupeAndShuffle(rand.New(rand.NewPCG(3, 4)), links)
	if len(worklist) != len(links) {
		t.Errorf("Expected %d URLs, got %d", len(links), len(worklist))
	}
}

func TestDedupeAndShuffleDeterministicWithSeed(t *testing.T) {
	links := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	first := DedupeAndShuffle(rand.New(rand.NewPCG(7, 7)), links)
	second := DedupeAndShuffle(rand.New(rand.NewPCG(7, 7)), links)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Same seed produced different orders: %v vs %v", first, second)
	}
}

func TestDedupeAndShuffleEmpty(t *testing.T) {
	worklist := DedupeAndShuffle(nil)
	if worklist == nil || len(worklist) != 0 {
		t.Errorf("Expected empty worklist, got %v", worklist)
	}
}

func TestDedupeAndShuffleDistribution(t *testing.T) {
	// Every element should reach the first position over many shuffles
	links := []string{"a", "b", "c", "d"}
	rng := rand.New(rand.NewPCG(11, 13))

	firsts := make(map[string]int)
	for i := 0; i < 400; i++ {
		firsts[DedupeAndShuffle(rng, links)[0]]++
	}

	for _, l := range links {
		if firsts[l] < 50 {
			t.Errorf("Element %s first only %d/400 times", l, firsts[l])
		}
	}
}

func TestUniqueInOrder(t *testing.T) {
	got := uniqueInOrder([]string{"b", "a", "b", "c", "a"})
	expected := []string{"b", "a", "c"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("uniqueInOrder() = %v, want %v", got, expected)
	}
}
