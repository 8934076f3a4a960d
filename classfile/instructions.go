package classfile

import "fmt"

// InstructionKind identifies the kind of cross-reference instruction.
// Kinds are grouped by the sort of target they reference: a class, a
// method, or a field.
type InstructionKind uint8

const (
	// Method targets
	KindInvokeVirtual InstructionKind = iota
	KindInvokeSpecial
	KindInvokeStatic
	KindInvokeInterface

	// Field targets
	KindGetField
	KindPutField
	KindGetStatic
	KindPutStatic

	// Class targets
	KindNew
	KindCheckCast
	KindInstanceOf
)

// TargetKind classifies what an instruction kind references.
type TargetKind uint8

const (
	TargetMethod TargetKind = iota
	TargetField
	TargetClass
)

// kindInfo provides metadata about each instruction kind.
type kindInfo struct {
	Name   string
	Target TargetKind
}

var kindInfoTable = map[InstructionKind]kindInfo{
	KindInvokeVirtual:   {"invokevirtual", TargetMethod},
	KindInvokeSpecial:   {"invokespecial", TargetMethod},
	KindInvokeStatic:    {"invokestatic", TargetMethod},
	KindInvokeInterface: {"invokeinterface", TargetMethod},

	KindGetField:  {"getfield", TargetField},
	KindPutField:  {"putfield", TargetField},
	KindGetStatic: {"getstatic", TargetField},
	KindPutStatic: {"putstatic", TargetField},

	KindNew:        {"new", TargetClass},
	KindCheckCast:  {"checkcast", TargetClass},
	KindInstanceOf: {"instanceof", TargetClass},
}

// String returns the JVM mnemonic for the instruction kind.
func (k InstructionKind) String() string {
	if info, ok := kindInfoTable[k]; ok {
		return info.Name
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint8(k))
}

// Target returns what sort of reference this kind carries.
func (k InstructionKind) Target() TargetKind {
	return kindInfoTable[k].Target
}

// IsInvoke reports whether the kind is a method invocation.
func (k InstructionKind) IsInvoke() bool {
	return k.Target() == TargetMethod
}

// IsStaticAccess reports whether the kind requires a static target
// (invokestatic, getstatic, putstatic).
func (k InstructionKind) IsStaticAccess() bool {
	return k == KindInvokeStatic || k == KindGetStatic || k == KindPutStatic
}

// AllKinds returns every defined instruction kind.
// Useful for testing that all kinds have metadata.
func AllKinds() []InstructionKind {
	kinds := make([]InstructionKind, 0, len(kindInfoTable))
	for k := range kindInfoTable {
		kinds = append(kinds, k)
	}
	return kinds
}

// MethodLocation identifies the method containing an instruction:
// owning class, method name, and descriptor.
type MethodLocation struct {
	ClassName  string
	MethodName string
	Descriptor string
}

func (l MethodLocation) String() string {
	return Dotted(l.ClassName) + "." + l.MethodName + l.Descriptor
}

// MethodRef is a reference to a method on an owner class.
type MethodRef struct {
	Owner      string
	Name       string
	Descriptor string
}

func (r MethodRef) String() string {
	return Dotted(r.Owner) + "." + r.Name + r.Descriptor
}

// FieldRef is a reference to a field on an owner class.
type FieldRef struct {
	Owner      string
	Name       string
	Descriptor string
}

func (r FieldRef) String() string {
	return Dotted(r.Owner) + "." + r.Name + " : " + r.Descriptor
}

// Instruction is one located cross-reference. Exactly one of Class, Method,
// or Field is meaningful, according to Kind.Target(). Instructions are
// immutable values produced by bytecode decoding.
type Instruction struct {
	Kind   InstructionKind
	Class  string
	Method MethodRef
	Field  FieldRef
}

// TargetClass returns the owner class the instruction references.
func (i Instruction) TargetClass() string {
	switch i.Kind.Target() {
	case TargetMethod:
		return i.Method.Owner
	case TargetField:
		return i.Field.Owner
	default:
		return i.Class
	}
}
