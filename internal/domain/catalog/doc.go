// Package catalog provides the installed-app list and launcher layout.
//
// The built-in catalog mirrors the stock shell: ten apps in install order
// with the home grid in the same order. A catalog file can replace it:
//
//	cat, err := catalog.LoadFile("apps.yaml")
//	state := system.Default(now, cat.Apps, cat.HomeGrid)
//
// Supported formats are chosen by extension: .yaml/.yml, .toml and .json.
// The catalog only seeds factory defaults; a restored snapshot keeps the
// app list it was saved with.
package catalog
