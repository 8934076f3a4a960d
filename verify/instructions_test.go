package verify

import (
	"testing"

	"pluginverify/classfile"
	"pluginverify/problems"
)

func verifySingle(t *testing.T, ctx *ResolutionContext, caller *classfile.ClassFile) []problems.Problem {
	t.Helper()
	out := problems.NewSet()
	VerifyClass(ctx, caller, out)
	return out.Slice()
}

func TestAbstractMethodInvocation(t *testing.T) {
	// Host declares abstract class A with abstract m(); the plugin calls
	// A.m() virtually on a statically typed A reference and overrides
	// nothing.
	hostA := class("com/host/A", "java/lang/Object", classfile.AccAbstract)
	hostA.Methods = []classfile.Method{method("m", "()V", classfile.AccPublic|classfile.AccAbstract)}

	caller := class("com/plugin/P", "java/lang/Object", 0)
	caller.Methods = []classfile.Method{
		method("call", "()V", classfile.AccPublic, invoke(classfile.KindInvokeVirtual, "com/host/A", "m", "()V")),
	}

	plugin := mapResolver("plugin", caller)
	host := mapResolver("host", hostA, objectClass())
	ctx := NewResolutionContext("p", nil, plugin, host)

	got := verifySingle(t, ctx, caller)
	if len(got) != 1 {
		t.Fatalf("expected exactly one problem, got %v", got)
	}
	p, ok := got[0].(problems.AbstractMethodInvocation)
	if !ok {
		t.Fatalf("expected AbstractMethodInvocation, got %T", got[0])
	}
	if p.Method.Owner != "com/host/A" || p.Method.Name != "m" {
		t.Errorf("wrong target: %+v", p.Method)
	}
	if p.At.ClassName != "com/plugin/P" || p.At.MethodName != "call" {
		t.Errorf("wrong caller location: %+v", p.At)
	}
}

func TestConcreteOverrideSuppressesAbstract(t *testing.T) {
	// B extends abstract A and overrides m() concretely; calling B.m() is
	// fine even though A.m is abstract.
	hostA := class("com/host/A", "java/lang/Object", classfile.AccAbstract)
	hostA.Methods = []classfile.Method{method("m", "()V", classfile.AccPublic|classfile.AccAbstract)}
	hostB := class("com/host/B", "com/host/A", 0)
	hostB.Methods = []classfile.Method{method("m", "()V", classfile.AccPublic)}

	caller := class("com/plugin/P", "java/lang/Object", 0)
	caller.Methods = []classfile.Method{
		method("call", "()V", classfile.AccPublic, invoke(classfile.KindInvokeVirtual, "com/host/B", "m", "()V")),
	}

	ctx := NewResolutionContext("p", nil, mapResolver("plugin", caller), mapResolver("host", hostA, hostB, objectClass()))
	if got := verifySingle(t, ctx, caller); len(got) != 0 {
		t.Errorf("expected no problems, got %v", got)
	}
}

func TestInterfaceMethodsAreNotAbstractProblems(t *testing.T) {
	iface := &classfile.ClassFile{
		Name:    "com/host/Listener",
		Access:  classfile.AccPublic | classfile.AccInterface | classfile.AccAbstract,
		Methods: []classfile.Method{method("onEvent", "()V", classfile.AccPublic|classfile.AccAbstract)},
	}

	caller := class("com/plugin/P", "java/lang/Object", 0)
	caller.Methods = []classfile.Method{
		method("call", "()V", classfile.AccPublic, invoke(classfile.KindInvokeInterface, "com/host/Listener", "onEvent", "()V")),
	}

	ctx := NewResolutionContext("p", nil, mapResolver("plugin", caller), mapResolver("host", iface, objectClass()))
	if got := verifySingle(t, ctx, caller); len(got) != 0 {
		t.Errorf("invokeinterface on interface method should be clean, got %v", got)
	}
}

func TestClassNotFound(t *testing.T) {
	caller := class("com/plugin/P", "java/lang/Object", 0)
	caller.Methods = []classfile.Method{
		method("call", "()V", classfile.AccPublic, invoke(classfile.KindInvokeVirtual, "com/gone/Missing", "m", "()V")),
	}

	ctx := NewResolutionContext("p", nil, mapResolver("plugin", caller), mapResolver("host", objectClass()))
	got := verifySingle(t, ctx, caller)
	if len(got) != 1 {
		t.Fatalf("expected one problem, got %v", got)
	}
	if got[0].Kind() != problems.KindClassNotFound {
		t.Errorf("expected class not found, got %v", got[0].Kind())
	}
}

func TestExternalAllowListSuppression(t *testing.T) {
	// external.Lib.Foo is absent from every resolver but falls under the
	// allow-list, so no problem may be reported.
	caller := class("com/plugin/P", "java/lang/Object", 0)
	caller.Methods = []classfile.Method{
		method("call", "()V", classfile.AccPublic, invoke(classfile.KindInvokeVirtual, "external/Lib/Foo", "bar", "()V")),
	}

	ctx := NewResolutionContext("p", []string{"external."}, mapResolver("plugin", caller), mapResolver("host", objectClass()))
	if got := verifySingle(t, ctx, caller); len(got) != 0 {
		t.Errorf("allow-listed reference must never be reported, got %v", got)
	}
}

func TestMethodNotFound(t *testing.T) {
	hostA := class("com/host/A", "java/lang/Object", 0)

	caller := class("com/plugin/P", "java/lang/Object", 0)
	caller.Methods = []classfile.Method{
		method("call", "()V", classfile.AccPublic, invoke(classfile.KindInvokeVirtual, "com/host/A", "gone", "()V")),
	}

	ctx := NewResolutionContext("p", nil, mapResolver("plugin", caller), mapResolver("host", hostA, objectClass()))
	got := verifySingle(t, ctx, caller)
	if len(got) != 1 || got[0].Kind() != problems.KindMethodNotFound {
		t.Fatalf("expected method not found, got %v", got)
	}
}

func TestMethodFoundOnSuperclass(t *testing.T) {
	hostBase := class("com/host/Base", "java/lang/Object", 0)
	hostBase.Methods = []classfile.Method{method("m", "()V", classfile.AccPublic)}
	hostA := class("com/host/A", "com/host/Base", 0)

	caller := class("com/plugin/P", "java/lang/Object", 0)
	caller.Methods = []classfile.Method{
		method("call", "()V", classfile.AccPublic, invoke(classfile.KindInvokeVirtual, "com/host/A", "m", "()V")),
	}

	ctx := NewResolutionContext("p", nil, mapResolver("plugin", caller), mapResolver("host", hostA, hostBase, objectClass()))
	if got := verifySingle(t, ctx, caller); len(got) != 0 {
		t.Errorf("inherited method should resolve, got %v", got)
	}
}

func TestUnresolvableSupertypeSuppressesNotFound(t *testing.T) {
	// A's superclass is missing: absence of the method cannot be proven, so
	// nothing is reported about the method itself.
	hostA := class("com/host/A", "com/gone/Super", 0)

	caller := class("com/plugin/P", "java/lang/Object", 0)
	caller.Methods = []classfile.Method{
		method("call", "()V", classfile.AccPublic, invoke(classfile.KindInvokeVirtual, "com/host/A", "maybe", "()V")),
	}

	ctx := NewResolutionContext("p", nil, mapResolver("plugin", caller), mapResolver("host", hostA, objectClass()))
	if got := verifySingle(t, ctx, caller); len(got) != 0 {
		t.Errorf("incomplete supertype walk must not report member absence, got %v", got)
	}
}

func TestIllegalAccessPrivate(t *testing.T) {
	hostA := class("com/host/A", "java/lang/Object", 0)
	hostA.Methods = []classfile.Method{method("secret", "()V", classfile.AccPrivate)}

	caller := class("com/plugin/P", "java/lang/Object", 0)
	caller.Methods = []classfile.Method{
		method("call", "()V", classfile.AccPublic, invoke(classfile.KindInvokeSpecial, "com/host/A", "secret", "()V")),
	}

	ctx := NewResolutionContext("p", nil, mapResolver("plugin", caller), mapResolver("host", hostA, objectClass()))
	got := verifySingle(t, ctx, caller)
	if len(got) != 1 || got[0].Kind() != problems.KindIllegalAccess {
		t.Fatalf("expected illegal access, got %v", got)
	}
	p := got[0].(problems.IllegalAccess)
	if p.Visibility != "private" {
		t.Errorf("Visibility = %q", p.Visibility)
	}
}

func TestIllegalAccessPackagePrivate(t *testing.T) {
	hostA := class("com/host/A", "java/lang/Object", 0)
	hostA.Fields = []classfile.Field{{Name: "state", Descriptor: "I"}} // package-private

	tests := []struct {
		name         string
		callerClass  string
		wantProblems int
	}{
		{"other package", "com/plugin/P", 1},
		{"same package", "com/host/P", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := class(tt.callerClass, "java/lang/Object", 0)
			caller.Methods = []classfile.Method{
				method("call", "()V", classfile.AccPublic, fieldAccess(classfile.KindGetField, "com/host/A", "state", "I")),
			}

			ctx := NewResolutionContext("p", nil, mapResolver("plugin", caller), mapResolver("host", hostA, objectClass()))
			if got := verifySingle(t, ctx, caller); len(got) != tt.wantProblems {
				t.Errorf("got %v, want %d problems", got, tt.wantProblems)
			}
		})
	}
}

func TestProtectedAccessFromSubclass(t *testing.T) {
	hostA := class("com/host/A", "java/lang/Object", 0)
	hostA.Methods = []classfile.Method{method("hook", "()V", classfile.AccProtected)}

	caller := class("com/plugin/P", "com/host/A", 0)
	caller.Methods = []classfile.Method{
		method("call", "()V", classfile.AccPublic, invoke(classfile.KindInvokeVirtual, "com/host/A", "hook", "()V")),
	}

	ctx := NewResolutionContext("p", nil, mapResolver("plugin", caller), mapResolver("host", hostA, objectClass()))
	if got := verifySingle(t, ctx, caller); len(got) != 0 {
		t.Errorf("subclass may use protected member, got %v", got)
	}
}

func TestStaticVirtualMismatch(t *testing.T) {
	hostA := class("com/host/A", "java/lang/Object", 0)
	hostA.Methods = []classfile.Method{
		method("stat", "()V", classfile.AccPublic|classfile.AccStatic),
		method("virt", "()V", classfile.AccPublic),
	}

	tests := []struct {
		name string
		ins  classfile.Instruction
	}{
		{"static invoked virtually", invoke(classfile.KindInvokeVirtual, "com/host/A", "stat", "()V")},
		{"virtual invoked statically", invoke(classfile.KindInvokeStatic, "com/host/A", "virt", "()V")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := class("com/plugin/P", "java/lang/Object", 0)
			caller.Methods = []classfile.Method{method("call", "()V", classfile.AccPublic, tt.ins)}

			ctx := NewResolutionContext("p", nil, mapResolver("plugin", caller), mapResolver("host", hostA, objectClass()))
			got := verifySingle(t, ctx, caller)
			if len(got) != 1 || got[0].Kind() != problems.KindIncompatibleClassChange {
				t.Fatalf("expected incompatible class change, got %v", got)
			}
		})
	}
}

func TestFieldProblems(t *testing.T) {
	hostA := class("com/host/A", "java/lang/Object", 0)
	hostA.Fields = []classfile.Field{
		{Name: "counter", Descriptor: "I", Access: classfile.AccPublic | classfile.AccStatic},
	}

	tests := []struct {
		name     string
		ins      classfile.Instruction
		wantKind problems.Kind
	}{
		{"field not found", fieldAccess(classfile.KindGetField, "com/host/A", "gone", "I"), problems.KindFieldNotFound},
		{"static field read as instance", fieldAccess(classfile.KindGetField, "com/host/A", "counter", "I"), problems.KindIncompatibleClassChange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := class("com/plugin/P", "java/lang/Object", 0)
			caller.Methods = []classfile.Method{method("call", "()V", classfile.AccPublic, tt.ins)}

			ctx := NewResolutionContext("p", nil, mapResolver("plugin", caller), mapResolver("host", hostA, objectClass()))
			got := verifySingle(t, ctx, caller)
			if len(got) != 1 || got[0].Kind() != tt.wantKind {
				t.Fatalf("expected %v, got %v", tt.wantKind, got)
			}
		})
	}
}

func TestDuplicateReferencesCollapse(t *testing.T) {
	// The same broken reference twice in one method is one observation;
	// from two methods it is two.
	caller := class("com/plugin/P", "java/lang/Object", 0)
	caller.Methods = []classfile.Method{
		method("one", "()V", classfile.AccPublic,
			invoke(classfile.KindInvokeVirtual, "com/gone/Missing", "m", "()V"),
			invoke(classfile.KindInvokeVirtual, "com/gone/Missing", "m", "()V"),
		),
		method("two", "()V", classfile.AccPublic,
			invoke(classfile.KindInvokeVirtual, "com/gone/Missing", "m", "()V"),
		),
	}

	ctx := NewResolutionContext("p", nil, mapResolver("plugin", caller), mapResolver("host", objectClass()))
	if got := verifySingle(t, ctx, caller); len(got) != 2 {
		t.Errorf("expected two distinct observations, got %v", got)
	}
}

func TestMethodOnInterfaceOfSuperclass(t *testing.T) {
	iface := &classfile.ClassFile{
		Name:    "com/host/Named",
		Access:  classfile.AccPublic | classfile.AccInterface,
		Methods: []classfile.Method{method("name", "()Ljava/lang/String;", classfile.AccPublic|classfile.AccAbstract)},
	}
	hostA := class("com/host/A", "java/lang/Object", 0)
	hostA.Interfaces = []string{"com/host/Named"}

	caller := class("com/plugin/P", "java/lang/Object", 0)
	caller.Methods = []classfile.Method{
		method("call", "()V", classfile.AccPublic, invoke(classfile.KindInvokeVirtual, "com/host/A", "name", "()Ljava/lang/String;")),
	}

	ctx := NewResolutionContext("p", nil, mapResolver("plugin", caller), mapResolver("host", hostA, iface, objectClass()))
	if got := verifySingle(t, ctx, caller); len(got) != 0 {
		t.Errorf("interface-declared method should resolve through the walk, got %v", got)
	}
}
