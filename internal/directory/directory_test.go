package directory

import (
	"errors"
	"testing"

	"github.com/starford/menza/internal/apperr"
)

func TestAll(t *testing.T) {
	rs := All()
	if len(rs) != 14 {
		t.Fatalf("len = %d, want 14", len(rs))
	}
	if rs[0].ID != "0" || rs[0].Name != "Svi restorani" {
		t.Errorf("first entry = %+v", rs[0])
	}
}

func TestAllReturnsCopy(t *testing.T) {
	rs := All()
	rs[0].Name = "mutated"
	if got := All()[0].Name; got != "Svi restorani" {
		t.Errorf("table mutated through All(): %q", got)
	}
}

func TestByID(t *testing.T) {
	r, ok := ByID("8015")
	if !ok {
		t.Fatal("8015 should exist")
	}
	if r.Name != "Stjepan Radić" {
		t.Errorf("name = %q", r.Name)
	}
}

func TestByID_Unknown(t *testing.T) {
	if _, ok := ByID("9999"); ok {
		t.Error("9999 should not exist")
	}
}

func TestCreateNotImplemented(t *testing.T) {
	err := Create(Restaurant{ID: "9999", Name: "Nova menza"})
	if !errors.Is(err, apperr.ErrNotImplemented) {
		t.Errorf("err = %v, want ErrNotImplemented", err)
	}
}
