package slice_test

import (
	"reflect"
	"testing"

	"github.com/open-edge-platform/selfupdate-verifier/internal/utils/general/slice"
)

func TestContains(t *testing.T) {
	_slice := []string{"yast2", "yast2-update"}
	if !slice.Contains(_slice, "yast2") {
		t.Errorf("Contains should return true for existing element")
	}
	if slice.Contains(_slice, "YaST2") {
		t.Errorf("Contains should be case-sensitive")
	}
	if slice.Contains(nil, "yast2") {
		t.Errorf("Contains should return false for nil slice")
	}
}

func TestUnique(t *testing.T) {
	input := []string{"b", "a", "b", "c", "a"}
	expected := []string{"b", "a", "c"}
	if result := slice.Unique(input); !reflect.DeepEqual(result, expected) {
		t.Errorf("Expected %v, got %v", expected, result)
	}
	if result := slice.Unique([]string{}); len(result) != 0 {
		t.Errorf("Expected empty result, got %v", result)
	}
}

func TestToSet(t *testing.T) {
	set := slice.ToSet([]string{"x", "y", "x"})
	if len(set) != 2 {
		t.Fatalf("Expected 2 keys, got %d", len(set))
	}
	if _, ok := set["y"]; !ok {
		t.Errorf("Expected key 'y' in set")
	}
}
