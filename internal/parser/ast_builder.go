package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// declKinds maps tree-sitter declaration node types to declaration kinds
var declKinds = map[string]DeclKind{
	"class_declaration":           DeclClass,
	"interface_declaration":       DeclInterface,
	"enum_declaration":            DeclEnum,
	"record_declaration":          DeclRecord,
	"annotation_type_declaration": DeclAnnotationType,
}

// ASTBuilder builds a CompilationUnit from a tree-sitter CST
type ASTBuilder struct {
	filename string
	source   []byte
}

// NewASTBuilder creates a new AST builder
func NewASTBuilder(filename string, source []byte) *ASTBuilder {
	return &ASTBuilder{
		filename: filename,
		source:   source,
	}
}

// Build builds the compilation unit from the program node
func (b *ASTBuilder) Build(root *sitter.Node) *CompilationUnit {
	unit := &CompilationUnit{File: b.filename}
	if root == nil {
		return unit
	}
	unit.HasErrors = root.HasError()

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "package_declaration":
			unit.Package = b.qualifiedName(child)
		case "import_declaration":
			unit.Imports = append(unit.Imports, b.buildImport(child))
		default:
			if decl := b.buildTypeDecl(child, nil); decl != nil {
				unit.Types = append(unit.Types, decl)
			}
		}
	}
	return unit
}

func (b *ASTBuilder) buildImport(n *sitter.Node) Import {
	imp := Import{Name: b.qualifiedName(n)}
	for i := 0; i < int(n.ChildCount()); i++ {
		switch n.Child(i).Type() {
		case "static":
			imp.Static = true
		case "asterisk":
			imp.Wildcard = true
		}
	}
	return imp
}

// buildTypeDecl returns nil when n is not a type declaration
func (b *ASTBuilder) buildTypeDecl(n *sitter.Node, outer *TypeDecl) *TypeDecl {
	kind, ok := declKinds[n.Type()]
	if !ok {
		return nil
	}

	decl := &TypeDecl{
		Kind:  kind,
		Outer: outer,
		Location: Location{
			File:      b.filename,
			StartLine: int(n.StartPoint().Row) + 1,
			EndLine:   int(n.EndPoint().Row) + 1,
		},
	}
	if name := n.ChildByFieldName("name"); name != nil {
		decl.Name = name.Content(b.source)
	}

	if body := n.ChildByFieldName("body"); body != nil {
		b.collectMembers(body, decl)
	}
	return decl
}

// collectMembers adds the type declarations found directly in a body.
// Enum bodies keep their members in an enum_body_declarations node.
func (b *ASTBuilder) collectMembers(body *sitter.Node, decl *TypeDecl) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member.Type() == "enum_body_declarations" {
			b.collectMembers(member, decl)
			continue
		}
		if inner := b.buildTypeDecl(member, decl); inner != nil {
			decl.Inner = append(decl.Inner, inner)
		}
	}
}

// qualifiedName returns the dotted name held by a package or import declaration
func (b *ASTBuilder) qualifiedName(n *sitter.Node) string {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "scoped_identifier", "identifier":
			return strings.Join(strings.Fields(child.Content(b.source)), "")
		}
	}
	return ""
}
