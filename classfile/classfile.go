// Package classfile defines the decoded class metadata the verifier works
// with: classes, members, access flags, and the cross-reference instructions
// extracted from method bodies. Decoding the container format (jar/zip/module
// image) happens elsewhere; this package only models the result.
package classfile

import "strings"

// AccessFlags is the JVM access/property bitset for a class or member.
type AccessFlags uint16

const (
	AccPublic     AccessFlags = 0x0001
	AccPrivate    AccessFlags = 0x0002
	AccProtected  AccessFlags = 0x0004
	AccStatic     AccessFlags = 0x0008
	AccFinal      AccessFlags = 0x0010
	AccInterface  AccessFlags = 0x0200
	AccAbstract   AccessFlags = 0x0400
	AccSynthetic  AccessFlags = 0x1000
	AccAnnotation AccessFlags = 0x2000
	AccEnum       AccessFlags = 0x4000
)

func (f AccessFlags) IsPublic() bool    { return f&AccPublic != 0 }
func (f AccessFlags) IsPrivate() bool   { return f&AccPrivate != 0 }
func (f AccessFlags) IsProtected() bool { return f&AccProtected != 0 }
func (f AccessFlags) IsStatic() bool    { return f&AccStatic != 0 }
func (f AccessFlags) IsFinal() bool     { return f&AccFinal != 0 }
func (f AccessFlags) IsInterface() bool { return f&AccInterface != 0 }
func (f AccessFlags) IsAbstract() bool  { return f&AccAbstract != 0 }

// IsPackagePrivate reports default (package) visibility: none of the three
// explicit visibility bits set.
func (f AccessFlags) IsPackagePrivate() bool {
	return f&(AccPublic|AccPrivate|AccProtected) == 0
}

// Visibility returns the visibility bit as a word for problem descriptions.
func (f AccessFlags) Visibility() string {
	switch {
	case f.IsPublic():
		return "public"
	case f.IsPrivate():
		return "private"
	case f.IsProtected():
		return "protected"
	default:
		return "package-private"
	}
}

// ClassFile is the bytecode-derived metadata for one class.
// Class names are in internal (slash-separated) form, e.g. "com/example/Foo".
type ClassFile struct {
	Name       string
	SuperName  string // empty for java/lang/Object
	Interfaces []string
	Access     AccessFlags

	// API status markers carried over from class attributes/annotations.
	Deprecated   bool
	Experimental bool

	Methods []Method
	Fields  []Field
}

// Method is one declared method with its decoded cross-reference
// instructions. Instructions are empty for abstract and native methods.
type Method struct {
	Name       string
	Descriptor string
	Access     AccessFlags
	Deprecated bool

	Instructions []Instruction
}

// Field is one declared field.
type Field struct {
	Name       string
	Descriptor string
	Access     AccessFlags
	Deprecated bool
}

// PackageName returns the internal-form package of the class
// ("com/example" for "com/example/Foo"), or "" for the default package.
func (c *ClassFile) PackageName() string {
	if i := strings.LastIndexByte(c.Name, '/'); i >= 0 {
		return c.Name[:i]
	}
	return ""
}

// FindMethod returns the method declared on this class with the given name
// and descriptor, or nil. Does not look at supertypes.
func (c *ClassFile) FindMethod(name, descriptor string) *Method {
	for i := range c.Methods {
		m := &c.Methods[i]
		if m.Name == name && m.Descriptor == descriptor {
			return m
		}
	}
	return nil
}

// FindField returns the field declared on this class with the given name
// and descriptor, or nil. Does not look at supertypes.
func (c *ClassFile) FindField(name, descriptor string) *Field {
	for i := range c.Fields {
		f := &c.Fields[i]
		if f.Name == name && f.Descriptor == descriptor {
			return f
		}
	}
	return nil
}

// Dotted converts an internal class name to source form:
// "com/example/Foo" -> "com.example.Foo".
func Dotted(internalName string) string {
	return strings.ReplaceAll(internalName, "/", ".")
}
