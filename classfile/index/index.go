// Package index reads and writes prebuilt class index files: a snapshot of
// class metadata for a class source that is expensive to scan repeatedly
// (bundled platform modules, the JDK). The payload is canonical CBOR behind
// a small binary header, so identical inputs always produce identical files.
package index

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"pluginverify/classfile"
	"pluginverify/resolver"
)

// IndexVersion is the current index format version.
// Increment when making incompatible changes to the format.
const IndexVersion uint16 = 1

// Magic bytes for index files: "PVCI" (Plugin Verifier Class Index).
var Magic = []byte{'P', 'V', 'C', 'I'}

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("index: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Write serializes the classes to w: magic, version, then the canonical
// CBOR payload. Classes are sorted by name so the output is deterministic
// regardless of input order.
func Write(w io.Writer, classes []*classfile.ClassFile) error {
	sorted := make([]*classfile.ClassFile, len(classes))
	copy(sorted, classes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	if _, err := w.Write(Magic); err != nil {
		return fmt.Errorf("index: writing magic: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, IndexVersion); err != nil {
		return fmt.Errorf("index: writing version: %w", err)
	}

	payload, err := encMode.Marshal(sorted)
	if err != nil {
		return fmt.Errorf("index: marshal: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("index: writing payload: %w", err)
	}
	return nil
}

// Read deserializes an index previously produced by Write.
func Read(r io.Reader) ([]*classfile.ClassFile, error) {
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("index: reading magic: %w", err)
	}
	if string(magic) != string(Magic) {
		return nil, fmt.Errorf("index: bad magic %q", magic)
	}

	var version uint16
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return nil, fmt.Errorf("index: reading version: %w", err)
	}
	if version != IndexVersion {
		return nil, fmt.Errorf("index: unsupported version %d (current is %d)", version, IndexVersion)
	}

	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("index: reading payload: %w", err)
	}

	var classes []*classfile.ClassFile
	if err := cbor.Unmarshal(payload, &classes); err != nil {
		return nil, fmt.Errorf("index: unmarshal: %w", err)
	}
	return classes, nil
}

// WriteFile writes an index file at path.
func WriteFile(path string, classes []*classfile.ClassFile) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	defer f.Close()

	if err := Write(f, classes); err != nil {
		return err
	}
	return f.Close()
}

// Load reads an index file and wraps it in an in-memory resolver with the
// given name.
func Load(path, name string) (*resolver.MapResolver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	defer f.Close()

	classes, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("index: %s: %w", path, err)
	}

	r := resolver.NewMapResolver(name)
	for _, cf := range classes {
		r.Add(cf)
	}
	return r, nil
}
