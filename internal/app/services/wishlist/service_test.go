package wishlist

import (
	"io"
	"testing"

	"github.com/lunaredge/storefront/internal/app/domain/catalog"
	"github.com/lunaredge/storefront/internal/app/state"
	"github.com/lunaredge/storefront/internal/app/storage/memory"
	"github.com/lunaredge/storefront/pkg/logger"
)

type fakeCatalog map[string]catalog.Product

func (f fakeCatalog) Product(id string) (catalog.Product, bool) {
	p, ok := f[id]
	return p, ok
}

func TestToggle(t *testing.T) {
	log := logger.NewDefault("test")
	log.SetOutput(io.Discard)
	resolver := fakeCatalog{
		"A": {ID: "A", Title: "Gadget"},
	}
	svc := New(state.New(memory.New(), log), resolver, log)

	if !svc.Toggle("A") {
		t.Fatal("first toggle should add")
	}
	if !svc.Contains("A") {
		t.Fatal("product should be wishlisted")
	}
	if got := svc.List(); len(got) != 1 || got[0].Title != "Gadget" {
		t.Fatalf("list: %#v", got)
	}

	if svc.Toggle("A") {
		t.Fatal("second toggle should remove")
	}
	if svc.Contains("A") {
		t.Fatal("product should no longer be wishlisted")
	}

	// Entries for products gone from the catalog are skipped, not errors.
	svc.Toggle("ghost")
	if got := svc.List(); len(got) != 0 {
		t.Fatalf("unresolvable entries should be skipped: %#v", got)
	}
}
