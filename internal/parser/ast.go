package parser

import "strings"

// DeclKind is the kind of a Java type declaration
type DeclKind string

const (
	DeclClass          DeclKind = "class"
	DeclInterface      DeclKind = "interface"
	DeclEnum           DeclKind = "enum"
	DeclRecord         DeclKind = "record"
	DeclAnnotationType DeclKind = "annotation"
)

// Location is a position in a source file
type Location struct {
	File      string
	StartLine int
	EndLine   int
}

// TypeDecl is a type declared in a compilation unit
type TypeDecl struct {
	Name     string
	Kind     DeclKind
	Location Location

	// Outer is nil for top-level declarations
	Outer *TypeDecl
	Inner []*TypeDecl
}

// BinaryName returns the name relative to the package, with nested types
// separated by '$'
func (d *TypeDecl) BinaryName() string {
	if d.Outer == nil {
		return d.Name
	}
	return d.Outer.BinaryName() + "$" + d.Name
}

// Walk visits d and every nested declaration depth-first
func (d *TypeDecl) Walk(visit func(*TypeDecl) bool) {
	if !visit(d) {
		return
	}
	for _, in := range d.Inner {
		in.Walk(visit)
	}
}

// Import is one import declaration
type Import struct {
	Name     string
	Static   bool
	Wildcard bool
}

// CompilationUnit is the declaration-level view of one Java source file
type CompilationUnit struct {
	File    string
	Package string
	Imports []Import
	Types   []*TypeDecl

	// HasErrors is set when tree-sitter recovered from syntax errors
	HasErrors bool
}

// QualifiedName returns the fully-qualified binary name of d
func (u *CompilationUnit) QualifiedName(d *TypeDecl) string {
	if u.Package == "" {
		return d.BinaryName()
	}
	return u.Package + "." + d.BinaryName()
}

// QualifiedNames returns the fully-qualified names of every declared type,
// nested types included, in declaration order
func (u *CompilationUnit) QualifiedNames() []string {
	var names []string
	for _, t := range u.Types {
		t.Walk(func(d *TypeDecl) bool {
			names = append(names, u.QualifiedName(d))
			return true
		})
	}
	return names
}

// FindType returns the declaration with the given binary name
func (u *CompilationUnit) FindType(binaryName string) *TypeDecl {
	var found *TypeDecl
	for _, t := range u.Types {
		t.Walk(func(d *TypeDecl) bool {
			if found != nil {
				return false
			}
			if d.BinaryName() == binaryName {
				found = d
				return false
			}
			return true
		})
	}
	return found
}

// ImportedTypes returns the single-type, non-static imports
func (u *CompilationUnit) ImportedTypes() []string {
	var names []string
	for _, imp := range u.Imports {
		if !imp.Static && !imp.Wildcard && strings.Contains(imp.Name, ".") {
			names = append(names, imp.Name)
		}
	}
	return names
}
