// Package problems defines the typed compatibility findings the verifier
// produces and the per-plugin verdict they roll up into.
//
// Each problem variant is a small comparable value struct, so equality and
// hashing are structural by construction: two problems built from the same
// kind, locations, and target compare equal, which is exactly the
// deduplication key. No variant hand-writes its own comparison.
package problems

import (
	"fmt"

	"pluginverify/classfile"
)

// Kind names a problem category.
type Kind string

const (
	KindClassNotFound            Kind = "class not found"
	KindMethodNotFound           Kind = "method not found"
	KindFieldNotFound            Kind = "field not found"
	KindAbstractMethodInvocation Kind = "abstract method invocation"
	KindIllegalAccess            Kind = "illegal access"
	KindIncompatibleClassChange  Kind = "incompatible class change"
)

// Problem is one binary-incompatibility finding. Implementations are
// comparable value types; do not implement Problem with a pointer receiver
// or the deduplication contract breaks.
type Problem interface {
	Kind() Kind

	// Location is the referencing method the problem was observed in.
	Location() classfile.MethodLocation

	// TargetClass is the class the broken reference points at.
	TargetClass() string

	// Description renders the finding for humans.
	Description() string
}

// ClassNotFound: a referenced class resolves nowhere.
type ClassNotFound struct {
	Class string
	At    classfile.MethodLocation
}

func (p ClassNotFound) Kind() Kind                           { return KindClassNotFound }
func (p ClassNotFound) Location() classfile.MethodLocation   { return p.At }
func (p ClassNotFound) TargetClass() string                  { return p.Class }
func (p ClassNotFound) Description() string {
	return fmt.Sprintf("access to unresolved class %s in %s", classfile.Dotted(p.Class), p.At)
}

// MethodNotFound: the owner class resolves but declares no such method on
// itself or any resolvable supertype.
type MethodNotFound struct {
	Method classfile.MethodRef
	At     classfile.MethodLocation
}

func (p MethodNotFound) Kind() Kind                         { return KindMethodNotFound }
func (p MethodNotFound) Location() classfile.MethodLocation { return p.At }
func (p MethodNotFound) TargetClass() string                { return p.Method.Owner }
func (p MethodNotFound) Description() string {
	return fmt.Sprintf("invocation of unresolved method %s in %s", p.Method, p.At)
}

// FieldNotFound: the owner class resolves but declares no such field on
// itself or any resolvable supertype.
type FieldNotFound struct {
	Field classfile.FieldRef
	At    classfile.MethodLocation
}

func (p FieldNotFound) Kind() Kind                         { return KindFieldNotFound }
func (p FieldNotFound) Location() classfile.MethodLocation { return p.At }
func (p FieldNotFound) TargetClass() string                { return p.Field.Owner }
func (p FieldNotFound) Description() string {
	return fmt.Sprintf("access to unresolved field %s in %s", p.Field, p.At)
}

// AbstractMethodInvocation: an invocation resolves to an abstract method
// with no concrete override in the statically known receiver type.
type AbstractMethodInvocation struct {
	Method classfile.MethodRef
	At     classfile.MethodLocation
}

func (p AbstractMethodInvocation) Kind() Kind                         { return KindAbstractMethodInvocation }
func (p AbstractMethodInvocation) Location() classfile.MethodLocation { return p.At }
func (p AbstractMethodInvocation) TargetClass() string                { return p.Method.Owner }
func (p AbstractMethodInvocation) Description() string {
	return fmt.Sprintf("invocation of abstract method %s in %s", p.Method, p.At)
}

// IllegalAccess: a member is referenced from outside its accessibility
// scope. Owner/Name/Descriptor identify the member (method or field);
// Visibility is the member's declared visibility.
type IllegalAccess struct {
	Owner      string
	Name       string
	Descriptor string
	Visibility string
	At         classfile.MethodLocation
}

func (p IllegalAccess) Kind() Kind                         { return KindIllegalAccess }
func (p IllegalAccess) Location() classfile.MethodLocation { return p.At }
func (p IllegalAccess) TargetClass() string                { return p.Owner }
func (p IllegalAccess) Description() string {
	return fmt.Sprintf("illegal access to %s member %s.%s %s in %s",
		p.Visibility, classfile.Dotted(p.Owner), p.Name, p.Descriptor, p.At)
}

// IncompatibleClassChange: the reference and the resolved member disagree
// structurally, e.g. a static method invoked virtually.
type IncompatibleClassChange struct {
	Owner       string
	Name        string
	Descriptor  string
	Instruction classfile.InstructionKind
	Static      bool // the resolved member is static
	At          classfile.MethodLocation
}

func (p IncompatibleClassChange) Kind() Kind                         { return KindIncompatibleClassChange }
func (p IncompatibleClassChange) Location() classfile.MethodLocation { return p.At }
func (p IncompatibleClassChange) TargetClass() string                { return p.Owner }
func (p IncompatibleClassChange) Description() string {
	state := "non-static"
	if p.Static {
		state = "static"
	}
	return fmt.Sprintf("%s member %s.%s %s referenced via %s in %s",
		state, classfile.Dotted(p.Owner), p.Name, p.Descriptor, p.Instruction, p.At)
}
