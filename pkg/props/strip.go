package props

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/simonhull/firebird-suite/roost/pkg/msbuild"
)

// StripProperties removes property declarations whose name and value match
// a hoisted entry. Property groups left without elements are removed.
func StripProperties(content string, hoisted map[string]string) (string, bool, error) {
	doc, err := msbuild.Parse(content)
	if err != nil {
		return content, false, err
	}

	changed := false
	for _, group := range msbuild.PropertyGroups(doc.Root()) {
		removed := false
		for _, prop := range group.ChildElements() {
			value, ok := hoisted[prop.Tag]
			if !ok || msbuild.Value(prop) != value {
				continue
			}
			msbuild.Remove(prop)
			removed = true
		}
		if removed && !msbuild.HasChildElements(group) {
			msbuild.Remove(group)
		}
		changed = changed || removed
	}

	return finish(doc, content, changed)
}

// StripPackageVersions removes the Version attribute and Version child
// element from every PackageReference whose id has a central version in
// resolved. Update items, references without an id and packages missing
// from resolved keep their versions.
func StripPackageVersions(content string, resolved map[string]string) (string, bool, error) {
	doc, err := msbuild.Parse(content)
	if err != nil {
		return content, false, err
	}

	changed := false
	for _, ref := range msbuild.PackageReferences(doc.Root()) {
		name := msbuild.ReferenceInclude(ref)
		if _, ok := resolved[name]; !ok || name == "" {
			continue
		}
		if ref.RemoveAttr(msbuild.AttrVersion) != nil {
			changed = true
		}
		for _, child := range ref.ChildElements() {
			if child.Tag == msbuild.TagVersion {
				msbuild.Remove(child)
				changed = true
			}
		}
	}

	return finish(doc, content, changed)
}

func finish(doc *etree.Document, original string, changed bool) (string, bool, error) {
	if !changed {
		return original, false, nil
	}
	out, err := msbuild.Write(doc)
	if err != nil {
		return original, false, fmt.Errorf("write project: %w", err)
	}
	return out, true, nil
}
