// Package msbuild reads and edits MSBuild project XML.
package msbuild

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Element names used by project files and central configuration files.
const (
	TagProject          = "Project"
	TagPropertyGroup    = "PropertyGroup"
	TagItemGroup        = "ItemGroup"
	TagPackageReference = "PackageReference"
	TagPackageVersion   = "PackageVersion"
	TagVersion          = "Version"

	AttrInclude = "Include"
	AttrVersion = "Version"
)

// ErrNoRoot is returned for input that holds no XML element at all.
var ErrNoRoot = errors.New("document has no root element")

// Parse reads content into an element tree.
func Parse(content string) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(content); err != nil {
		return nil, fmt.Errorf("parse XML: %w", err)
	}
	if doc.Root() == nil {
		return nil, ErrNoRoot
	}
	return doc, nil
}

// Descendants returns every element below root whose local name is tag, in
// document order. Namespace prefixes are ignored.
func Descendants(root *etree.Element, tag string) []*etree.Element {
	var found []*etree.Element
	var visit func(el *etree.Element)
	visit = func(el *etree.Element) {
		for _, child := range el.ChildElements() {
			if child.Tag == tag {
				found = append(found, child)
			}
			visit(child)
		}
	}
	visit(root)
	return found
}

// PropertyGroups returns every PropertyGroup at any depth.
func PropertyGroups(root *etree.Element) []*etree.Element {
	return Descendants(root, TagPropertyGroup)
}

// PackageReferences returns every PackageReference at any depth.
func PackageReferences(root *etree.Element) []*etree.Element {
	return Descendants(root, TagPackageReference)
}

// Value returns the concatenated text of el and all of its descendants,
// trimmed.
func Value(el *etree.Element) string {
	var b strings.Builder
	var visit func(e *etree.Element)
	visit = func(e *etree.Element) {
		for _, tok := range e.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				b.WriteString(t.Data)
			case *etree.Element:
				visit(t)
			}
		}
	}
	visit(el)
	return strings.TrimSpace(b.String())
}

// ReferenceInclude returns the trimmed package id of a PackageReference.
// Update items and references without an id return "".
func ReferenceInclude(ref *etree.Element) string {
	return strings.TrimSpace(ref.SelectAttrValue(AttrInclude, ""))
}

// ReferenceVersion returns the version declared on a PackageReference, from
// its Version attribute or a child Version element.
func ReferenceVersion(ref *etree.Element) (string, bool) {
	if attr := ref.SelectAttr(AttrVersion); attr != nil {
		return attr.Value, true
	}
	for _, child := range ref.ChildElements() {
		if child.Tag == TagVersion {
			return Value(child), true
		}
	}
	return "", false
}

// Remove detaches el from its parent together with the whitespace that
// indented it, so the surrounding layout stays intact.
func Remove(el *etree.Element) {
	parent := el.Parent()
	if parent == nil {
		return
	}
	idx := el.Index()
	if idx > 0 {
		if cd, ok := parent.Child[idx-1].(*etree.CharData); ok && cd.IsWhitespace() {
			parent.RemoveChildAt(idx - 1)
		}
	}
	parent.RemoveChild(el)
}

// HasChildElements reports whether el still contains any element.
func HasChildElements(el *etree.Element) bool {
	return len(el.ChildElements()) > 0
}

// Write serializes doc. etree re-emits every element, so self-closing tags
// lose the space before "/>"; text, comments and attribute order are kept.
func Write(doc *etree.Document) (string, error) {
	return doc.WriteToString()
}
