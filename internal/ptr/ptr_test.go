package ptr_test

import (
	"testing"

	"github.com/styrkr/styrkr/internal/ptr"
)

func TestRef(t *testing.T) {
	rounds := 5
	p := ptr.Ref(rounds)
	if p == nil || *p != rounds {
		t.Fatalf("Ref(%d) = %v", rounds, p)
	}
	*p = 3
	if rounds != 5 {
		t.Error("Ref must copy its argument")
	}
}

func TestValueOr(t *testing.T) {
	if got := ptr.ValueOr(nil, 5); got != 5 {
		t.Errorf("ValueOr(nil, 5) = %d", got)
	}
	if got := ptr.ValueOr(ptr.Ref(2), 5); got != 2 {
		t.Errorf("ValueOr(&2, 5) = %d", got)
	}
	if got := ptr.ValueOr(ptr.Ref(false), true); got {
		t.Error("ValueOr(&false, true) = true")
	}
}
