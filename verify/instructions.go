package verify

import (
	"errors"

	"pluginverify/classfile"
	"pluginverify/problems"
	"pluginverify/resolver"
)

// VerifyClass walks every cross-reference instruction of every method of
// the class and records compatibility problems in out. A reference that
// cannot be classified (hard resolver error on a non-plugin source) is
// recorded as a resolution problem rather than propagated: failures here
// are findings about the environment, not run failures.
func VerifyClass(ctx *ResolutionContext, caller *classfile.ClassFile, out *problems.Set) {
	for i := range caller.Methods {
		m := &caller.Methods[i]
		at := classfile.MethodLocation{
			ClassName:  caller.Name,
			MethodName: m.Name,
			Descriptor: m.Descriptor,
		}
		for _, ins := range m.Instructions {
			verifyInstruction(ctx, caller, at, ins, out)
		}
	}
}

func verifyInstruction(ctx *ResolutionContext, caller *classfile.ClassFile, at classfile.MethodLocation, ins classfile.Instruction, out *problems.Set) {
	target := ins.TargetClass()
	if ctx.IsExternal(target) {
		return
	}

	owner, err := ctx.Resolve(target)
	if err != nil {
		if !errors.Is(err, resolver.ErrNotFound) {
			log.Debugf("resolving %s: %v", target, err)
		}
		out.Add(problems.ClassNotFound{Class: target, At: at})
		return
	}

	switch ins.Kind.Target() {
	case classfile.TargetMethod:
		verifyMethodRef(ctx, caller, at, ins, owner, out)
	case classfile.TargetField:
		verifyFieldRef(ctx, caller, at, ins, owner, out)
	}
}

func verifyMethodRef(ctx *ResolutionContext, caller *classfile.ClassFile, at classfile.MethodLocation, ins classfile.Instruction, owner *classfile.ClassFile, out *problems.Set) {
	decl, m, complete := ctx.LookupMethod(owner, ins.Method.Name, ins.Method.Descriptor)
	if m == nil {
		if complete {
			out.Add(problems.MethodNotFound{Method: ins.Method, At: at})
		}
		return
	}

	if m.Access.IsStatic() != (ins.Kind == classfile.KindInvokeStatic) {
		out.Add(problems.IncompatibleClassChange{
			Owner:       decl.Name,
			Name:        m.Name,
			Descriptor:  m.Descriptor,
			Instruction: ins.Kind,
			Static:      m.Access.IsStatic(),
			At:          at,
		})
		return
	}

	// The statically known receiver type is the referenced owner; a lookup
	// from there that lands on an abstract class method means no concrete
	// override exists between the receiver type and the declaration.
	if m.Access.IsAbstract() && !decl.Access.IsInterface() &&
		(ins.Kind == classfile.KindInvokeVirtual || ins.Kind == classfile.KindInvokeSpecial) {
		out.Add(problems.AbstractMethodInvocation{Method: ins.Method, At: at})
	}

	if !ctx.accessible(caller, decl, m.Access) {
		out.Add(problems.IllegalAccess{
			Owner:      decl.Name,
			Name:       m.Name,
			Descriptor: m.Descriptor,
			Visibility: m.Access.Visibility(),
			At:         at,
		})
	}
}

func verifyFieldRef(ctx *ResolutionContext, caller *classfile.ClassFile, at classfile.MethodLocation, ins classfile.Instruction, owner *classfile.ClassFile, out *problems.Set) {
	decl, f, complete := ctx.LookupField(owner, ins.Field.Name, ins.Field.Descriptor)
	if f == nil {
		if complete {
			out.Add(problems.FieldNotFound{Field: ins.Field, At: at})
		}
		return
	}

	if f.Access.IsStatic() != ins.Kind.IsStaticAccess() {
		out.Add(problems.IncompatibleClassChange{
			Owner:       decl.Name,
			Name:        f.Name,
			Descriptor:  f.Descriptor,
			Instruction: ins.Kind,
			Static:      f.Access.IsStatic(),
			At:          at,
		})
		return
	}

	if !ctx.accessible(caller, decl, f.Access) {
		out.Add(problems.IllegalAccess{
			Owner:      decl.Name,
			Name:       f.Name,
			Descriptor: f.Descriptor,
			Visibility: f.Access.Visibility(),
			At:         at,
		})
	}
}
