// Package generator applies file changes safely.
//
// Changes are described as Operations, validated up front, then written in a
// single Transaction. If any write fails, every file already touched is put
// back: rewritten files get their previous content, new files are removed.
// A committed transaction can also be rolled back later, which is how a
// failed post-write verification undoes a run.
//
//	ops := []generator.Operation{
//	    &generator.WriteFileOp{Path: "Directory.Build.props", Content: data, Mode: 0644},
//	    &generator.WriteFileOp{Path: "src/Api/Api.csproj", Content: stripped, Mode: 0644, Update: true},
//	}
//	tx, err := generator.Execute(ctx, ops, generator.ExecuteOptions{BackupDir: ".roost/backup/<run>"})
//
// When a target already exists, a Resolver decides whether to keep it,
// replace it or show a diff first (see NewResolver).
package generator
