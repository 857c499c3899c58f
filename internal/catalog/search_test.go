package catalog_test

import (
	"reflect"
	"testing"

	"tarasamar/internal/catalog"
)

func TestSearch_BlankQueryIsEmpty(t *testing.T) {
	c := catalog.MustLoad()
	for _, q := range []string{"", "   ", "\t"} {
		if got := c.Search(q); len(got) != 0 {
			t.Fatalf("Search(%q) = %d results, want 0", q, len(got))
		}
	}
}

func TestSearch_CaseInsensitive(t *testing.T) {
	c := catalog.MustLoad()
	upper := c.Search("BIRI")
	lower := c.Search("biri")
	if !reflect.DeepEqual(upper, lower) {
		t.Fatalf("case mismatch: %+v vs %+v", upper, lower)
	}
	if len(lower) != 1 || lower[0].Name != "Biri Island Rock Formations" {
		t.Fatalf("unexpected results: %+v", lower)
	}
}

func TestSearch_CapAndStableOrder(t *testing.T) {
	c := catalog.MustLoad()
	got := c.Search("a")
	if len(got) != catalog.MaxSearchResults {
		t.Fatalf("expected %d results, got %d", catalog.MaxSearchResults, len(got))
	}
	// destinations come first, in catalog order
	for i := 0; i < 6; i++ {
		if got[i].Type != catalog.TypeDestination || got[i].ID != i+1 {
			t.Fatalf("result %d out of order: %+v", i, got[i])
		}
	}
	if got[7].Name != "Samar Beach Resort" || got[7].Type != catalog.TypeResort {
		t.Fatalf("unexpected tail: %+v", got[7])
	}
}

func TestSearch_MatchesLocationAndCategory(t *testing.T) {
	c := catalog.MustLoad()

	byLoc := c.Search("calbayog")
	if len(byLoc) != 5 {
		t.Fatalf("calbayog: expected 5, got %d", len(byLoc))
	}

	byCat := c.Search("tours")
	names := []string{}
	for _, r := range byCat {
		names = append(names, r.Name)
	}
	want := []string{"Island Hopping Adventures", "Sohoton Cave Tours"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("tours: got %v want %v", names, want)
	}
}

func TestSearch_NeverExceedsCap(t *testing.T) {
	c := catalog.MustLoad()
	for _, q := range []string{"a", "e", "o", " ", "s", "city", "falls", "zzz"} {
		if n := len(c.Search(q)); n > catalog.MaxSearchResults {
			t.Fatalf("Search(%q) returned %d", q, n)
		}
	}
}

func TestPackages_FilterAndLookup(t *testing.T) {
	c := catalog.MustLoad()
	if n := len(c.Packages("")); n != 6 {
		t.Fatalf("all packages: got %d", n)
	}
	if n := len(c.Packages("All")); n != 6 {
		t.Fatalf("All packages: got %d", n)
	}
	tours := c.Packages("tours")
	if len(tours) != 3 {
		t.Fatalf("tours: got %d", len(tours))
	}
	p, ok := c.Package(1)
	if !ok || p.Name != "Full-Day Island Hopping Adventure" || p.Price != 1500 {
		t.Fatalf("unexpected package 1: %+v", p)
	}
	if _, ok := c.Package(99); ok {
		t.Fatalf("expected miss for unknown package")
	}
	if p, ok := c.PackageByName(" full-day island hopping adventure "); !ok || p.ID != 1 {
		t.Fatalf("by name: %+v %v", p, ok)
	}
	if _, ok := c.PackageByName("Samar Beach Resort"); ok {
		t.Fatalf("resort is not a package")
	}
}

func TestParse_RejectsDuplicatePackages(t *testing.T) {
	doc := []byte("packages:\n  - id: 1\n    name: a\n  - id: 1\n    name: b\n")
	if _, err := catalog.Parse(doc); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}
