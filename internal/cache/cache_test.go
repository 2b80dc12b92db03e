package cache

import (
	"strings"
	"sync"
	"testing"
)

func TestFingerprint_Stable(t *testing.T) {
	a := Fingerprint("87% of users", "corpus body")
	b := Fingerprint("87% of users", "corpus body")
	if a != b {
		t.Errorf("same inputs produced different fingerprints: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "veracite:v1:") {
		t.Errorf("fingerprint missing version prefix: %s", a)
	}
}

func TestFingerprint_CorpusChangesKey(t *testing.T) {
	a := Fingerprint("87% of users", "first corpus")
	b := Fingerprint("87% of users", "second corpus")
	if a == b {
		t.Error("different corpora within the prefix must change the fingerprint")
	}
}

func TestFingerprint_PrefixBound(t *testing.T) {
	// Corpora identical for the first 500 bytes collide on purpose: only
	// the bounded prefix participates in the key.
	shared := strings.Repeat("x", corpusPrefixBytes)
	a := Fingerprint("segment", shared+"tail one")
	b := Fingerprint("segment", shared+"a completely different tail")
	if a != b {
		t.Error("corpora differing only beyond the prefix should share a fingerprint")
	}
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache()

	fp := Fingerprint("segment text", "corpus")
	if _, found := c.Get(fp); found {
		t.Fatal("empty cache returned a verdict")
	}

	want := Verdict{Verified: true, Source: "knowledge base (exact match)", Confidence: 1.0}
	c.Put(fp, want)

	got, found := c.Get(fp)
	if !found {
		t.Fatal("stored verdict not found")
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if c.Size() != 1 {
		t.Errorf("expected size 1, got %d", c.Size())
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	c := NewMemoryCache()
	c.Put("a", Verdict{Verified: true})
	c.Put("b", Verdict{Verified: false})

	c.Clear()

	if c.Size() != 0 {
		t.Errorf("expected empty cache after Clear, got size %d", c.Size())
	}
	if _, found := c.Get("a"); found {
		t.Error("verdict survived Clear")
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := NewMemoryCache()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				fp := Fingerprint("segment", strings.Repeat("c", n+j%5))
				c.Put(fp, Verdict{Verified: j%2 == 0})
				c.Get(fp)
				c.Size()
			}
		}(i)
	}
	wg.Wait()
}
