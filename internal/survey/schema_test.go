package survey

import (
	"reflect"
	"testing"
)

func TestBuildSchema(t *testing.T) {
	t.Run("union of first instance pages", func(t *testing.T) {
		b := NewSchemaBuilder()
		b.Observe(PageAnswerSet{"1_1": {}})
		b.Observe(PageAnswerSet{"1_2": {}, "2": {}})

		got := b.Freeze().IDs()
		want := []string{"1_1", "1_2", "2"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("schema = %v, want %v", got, want)
		}
	})

	t.Run("independent of observation order", func(t *testing.T) {
		a := BuildSchema([]string{"2", "1_10", "1_2", "1_2", "1_1"})
		b := BuildSchema([]string{"1_1", "1_2", "2", "1_10"})
		if !reflect.DeepEqual(a.IDs(), b.IDs()) {
			t.Errorf("schemas differ: %v vs %v", a.IDs(), b.IDs())
		}
		if a.Len() != 4 {
			t.Errorf("Len() = %d, want 4", a.Len())
		}
	})

	t.Run("empty input gives empty schema", func(t *testing.T) {
		s := BuildSchema(nil)
		if s.Len() != 0 {
			t.Errorf("Len() = %d, want 0", s.Len())
		}
		if got := s.Header(); !reflect.DeepEqual(got, []string{"response_id"}) {
			t.Errorf("Header() = %v", got)
		}
	})
}

func TestSchemaBuilder_Freeze(t *testing.T) {
	b := NewSchemaBuilder()
	if b.Frozen() {
		t.Fatal("new builder should not be frozen")
	}

	b.Observe(PageAnswerSet{"2": {}, "1": {}})
	first := b.Freeze()
	if !b.Frozen() {
		t.Fatal("builder should be frozen after Freeze")
	}

	b.Observe(PageAnswerSet{"3": {}})
	second := b.Freeze()

	if !reflect.DeepEqual(first.IDs(), []string{"1", "2"}) {
		t.Errorf("first = %v", first.IDs())
	}
	if !reflect.DeepEqual(first.IDs(), second.IDs()) {
		t.Errorf("Freeze() changed after later observation: %v vs %v", first.IDs(), second.IDs())
	}
	if second.Contains("3") {
		t.Error("identifier observed after freeze leaked into schema")
	}
}

func TestSchema_IDsIsCopy(t *testing.T) {
	s := BuildSchema([]string{"1", "2"})
	ids := s.IDs()
	ids[0] = "mutated"
	if s.At(0) != "1" {
		t.Errorf("schema mutated through IDs(): %v", s.IDs())
	}
}

func TestSchema_Header(t *testing.T) {
	s := BuildSchema([]string{"1_2", "1_1"})
	want := []string{"response_id", "1_1", "1_2"}
	if got := s.Header(); !reflect.DeepEqual(got, want) {
		t.Errorf("Header() = %v, want %v", got, want)
	}
}
