// Package assets provides the LaTeX templates, preview styles and image
// files used to build datasheets.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in template and preview style (go:embed)
//	    ├── FilesystemLoader  - project asset directory on disk
//	    └── AssetResolver     - custom first, embedded fallback
//
// A project directory overrides assets by name:
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css           # HTML preview stylesheet
//	└── templates/
//	    └── {name}.tex           # LaTeX skeleton with $placeholders$
//
// A single template file given by path (--template, template.tex next to
// the language directories) is read with ReadTemplateFile instead.
//
// DirStore is the image side: it answers the existence, listing and copy
// queries of the figure resolver against the real filesystem.
//
// # Security
//
// Asset names are validated to prevent path traversal. FilesystemLoader
// resolves symlinks and verifies paths stay within basePath.
package assets
