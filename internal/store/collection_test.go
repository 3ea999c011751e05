package store_test

import (
	"testing"

	"github.com/infocus-dev/showcase/internal/cms"
	"github.com/infocus-dev/showcase/internal/store"
)

func TestCollectionStore_ReplaceAndGet(t *testing.T) {
	s := store.NewCollectionStore()

	if _, ok := s.Get("news", "ja"); ok {
		t.Fatal("empty store should miss")
	}
	if s.Loaded("news", "ja") {
		t.Fatal("empty store should not report loaded")
	}

	s.Replace("news", "ja", []cms.Item{{ID: 1}, {ID: 2}})
	s.Replace("news", "en", []cms.Item{{ID: 3}})

	got, ok := s.Get("news", "ja")
	if !ok || len(got) != 2 {
		t.Fatalf("Get = %v, %v", got, ok)
	}
	if !s.Loaded("news", "en") {
		t.Error("en scope should be loaded")
	}
	if _, ok := s.Get("team", "ja"); ok {
		t.Error("unrelated scope should miss")
	}
}

func TestCollectionStore_GetReturnsCopy(t *testing.T) {
	s := store.NewCollectionStore()
	s.Replace("news", "ja", []cms.Item{{ID: 1, Visible: true}})

	first, _ := s.Get("news", "ja")
	first[0].Visible = false

	second, _ := s.Get("news", "ja")
	if !second[0].Visible {
		t.Error("mutating one reader's copy must not leak into the store")
	}
}
