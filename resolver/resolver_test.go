package resolver

import (
	"errors"
	"testing"

	"pluginverify/classfile"
)

func cf(name string) *classfile.ClassFile {
	return &classfile.ClassFile{Name: name, SuperName: "java/lang/Object"}
}

func TestMapResolver(t *testing.T) {
	r := NewMapResolver("test")
	r.Add(cf("b/B"))
	r.Add(cf("a/A"))

	got, err := r.Resolve("a/A")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Name != "a/A" {
		t.Errorf("resolved wrong class: %s", got.Name)
	}

	if _, err := r.Resolve("missing/C"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	names := r.Classes()
	if len(names) != 2 || names[0] != "a/A" || names[1] != "b/B" {
		t.Errorf("Classes() not sorted: %v", names)
	}
}

func TestMapResolverReplaces(t *testing.T) {
	r := NewMapResolver("test")
	r.Add(&classfile.ClassFile{Name: "a/A"})
	r.Add(&classfile.ClassFile{Name: "a/A", Access: classfile.AccFinal})

	got, err := r.Resolve("a/A")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Access.IsFinal() {
		t.Error("Add should replace a same-named class")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}
