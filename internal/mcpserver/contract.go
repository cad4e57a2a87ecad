package mcpserver

// TargetFormatContract describes the target file formats the engine reads
// and rewrites, for LLM consumers that edit target files directly.
const TargetFormatContract = `# Chaser Target File Formats

A target file holds path references that are kept in step with the
filesystem. The format is chosen by the file extension (case-sensitive).

## .json

Any JSON document. Every string value anywhere in the tree is a candidate
path. A new file starts as ` + "`[]`" + `.

` + "```" + `json
["./src/main.go", {"docs": "./docs"}]
` + "```" + `

## .yaml / .yml

Any YAML document, scanned like JSON. A new file starts as ` + "`paths: []`" + `.

## .toml

Any TOML document, scanned like JSON. A new file starts as ` + "`paths = []`" + `.

## .csv

The first line is a header and is never rewritten. The first field of every
other line is the path. A new file starts as ` + "`path,type`" + `.

## Rules

1. A string counts as a path when it contains a slash or backslash, starts
   with a dot or has a drive-letter prefix such as ` + "`C:\\`" + `.
2. Only entries under a configured watch root are tracked.
3. Rewrites replace exact values only; keys, other fields and comments-free
   structure are kept, but formatting is normalised on write.
4. A rename of a directory also rewrites every tracked path below it.
`
