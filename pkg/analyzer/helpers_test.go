package analyzer

import (
	"fmt"
	"strings"
)

// csproj builds a minimal SDK-style project. props are name=value pairs,
// refs are name=version pairs.
func csproj(props []string, refs []string) string {
	var b strings.Builder
	b.WriteString("<Project Sdk=\"Microsoft.NET.Sdk\">\n  <PropertyGroup>\n")
	for _, p := range props {
		name, value, _ := strings.Cut(p, "=")
		fmt.Fprintf(&b, "    <%s>%s</%s>\n", name, value, name)
	}
	b.WriteString("  </PropertyGroup>\n  <ItemGroup>\n")
	for _, r := range refs {
		name, version, _ := strings.Cut(r, "=")
		fmt.Fprintf(&b, "    <PackageReference Include=%q Version=%q />\n", name, version)
	}
	b.WriteString("  </ItemGroup>\n</Project>\n")
	return b.String()
}

func docs(contents ...string) []Document {
	out := make([]Document, len(contents))
	for i, c := range contents {
		out[i] = Document{Path: fmt.Sprintf("src/P%d/P%d.csproj", i, i), Content: c}
	}
	return out
}

func packageDocs(versions ...string) []Document {
	contents := make([]string, len(versions))
	for i, v := range versions {
		contents[i] = csproj(nil, []string{"Pkg=" + v})
	}
	return docs(contents...)
}
