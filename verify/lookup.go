package verify

import (
	"errors"

	"pluginverify/classfile"
	"pluginverify/resolver"
)

// Member lookup walks the supertype graph the way a vtable lookup does:
// the class itself, then the superclass chain, then interfaces breadth
// first. The walk is "complete" only if every supertype on the way was
// resolvable and non-external; an incomplete walk cannot prove a member
// absent, so callers must not report not-found from one.

// LookupMethod finds a method by name and descriptor starting at start.
// Returns the declaring class, the method, and whether the walk was
// complete.
func (c *ResolutionContext) LookupMethod(start *classfile.ClassFile, name, descriptor string) (*classfile.ClassFile, *classfile.Method, bool) {
	var decl *classfile.ClassFile
	var found *classfile.Method
	complete := c.walkSupertypes(start, func(cf *classfile.ClassFile) bool {
		if m := cf.FindMethod(name, descriptor); m != nil {
			decl, found = cf, m
			return true
		}
		return false
	})
	return decl, found, complete
}

// LookupField finds a field by name and descriptor starting at start.
func (c *ResolutionContext) LookupField(start *classfile.ClassFile, name, descriptor string) (*classfile.ClassFile, *classfile.Field, bool) {
	var decl *classfile.ClassFile
	var found *classfile.Field
	complete := c.walkSupertypes(start, func(cf *classfile.ClassFile) bool {
		if f := cf.FindField(name, descriptor); f != nil {
			decl, found = cf, f
			return true
		}
		return false
	})
	return decl, found, complete
}

// IsSubclassOf reports whether cf is className or a subclass of it,
// walking the superclass chain only. An unresolvable link ends the walk.
func (c *ResolutionContext) IsSubclassOf(cf *classfile.ClassFile, className string) bool {
	for cur := cf; cur != nil; {
		if cur.Name == className {
			return true
		}
		if cur.SuperName == "" {
			return false
		}
		next, err := c.Resolve(cur.SuperName)
		if err != nil {
			return false
		}
		cur = next
	}
	return false
}

// walkSupertypes visits start, its superclass chain, and all transitively
// reachable interfaces, breadth first, until visit returns true. Returns
// whether the walk covered the whole graph.
func (c *ResolutionContext) walkSupertypes(start *classfile.ClassFile, visit func(*classfile.ClassFile) bool) bool {
	complete := true
	seen := map[string]struct{}{start.Name: {}}
	queue := []*classfile.ClassFile{start}

	enqueue := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		if c.IsExternal(name) {
			complete = false
			return
		}
		cf, err := c.Resolve(name)
		if err != nil {
			if !errors.Is(err, resolver.ErrNotFound) {
				log.Debugf("supertype %s: %v", name, err)
			}
			complete = false
			return
		}
		queue = append(queue, cf)
	}

	for len(queue) > 0 {
		cf := queue[0]
		queue = queue[1:]
		if visit(cf) {
			return complete
		}
		enqueue(cf.SuperName)
		for _, iface := range cf.Interfaces {
			enqueue(iface)
		}
	}
	return complete
}

// accessible checks JVM accessibility of a member declared on decl with the
// given flags, referenced from caller.
func (c *ResolutionContext) accessible(caller, decl *classfile.ClassFile, access classfile.AccessFlags) bool {
	switch {
	case access.IsPublic():
		return true
	case access.IsPrivate():
		return caller.Name == decl.Name
	case access.IsProtected():
		return caller.PackageName() == decl.PackageName() || c.IsSubclassOf(caller, decl.Name)
	default: // package-private
		return caller.PackageName() == decl.PackageName()
	}
}
