package verify

import (
	"pluginverify/classfile"
	"pluginverify/resolver"
)

// Test fixtures: small hand-built class hierarchies.

func class(name, super string, access classfile.AccessFlags) *classfile.ClassFile {
	return &classfile.ClassFile{Name: name, SuperName: super, Access: access | classfile.AccPublic}
}

func method(name, descriptor string, access classfile.AccessFlags, instructions ...classfile.Instruction) classfile.Method {
	return classfile.Method{Name: name, Descriptor: descriptor, Access: access, Instructions: instructions}
}

func invoke(kind classfile.InstructionKind, owner, name, descriptor string) classfile.Instruction {
	return classfile.Instruction{Kind: kind, Method: classfile.MethodRef{Owner: owner, Name: name, Descriptor: descriptor}}
}

func fieldAccess(kind classfile.InstructionKind, owner, name, descriptor string) classfile.Instruction {
	return classfile.Instruction{Kind: kind, Field: classfile.FieldRef{Owner: owner, Name: name, Descriptor: descriptor}}
}

func mapResolver(name string, classes ...*classfile.ClassFile) *resolver.MapResolver {
	r := resolver.NewMapResolver(name)
	for _, cf := range classes {
		r.Add(cf)
	}
	return r
}

func objectClass() *classfile.ClassFile {
	return &classfile.ClassFile{Name: "java/lang/Object", Access: classfile.AccPublic}
}
