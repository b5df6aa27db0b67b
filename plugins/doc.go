// Package plugins hosts the built-in processor subpackages. It intentionally
// contains no production runtime code itself; this file exists to give the
// architectural guard test that walks the plugin tree a package to live in.
//
// A NOTE ON testhelper:
//
//	The subpackage plugins/testhelper builds enrichment-table fixtures for
//	processor tests. Like the processors themselves it is restricted to the
//	public pkg/ surface, so the architecture test walks it too. It carries
//	no stability guarantees and must not be imported by production
//	processor code.
package plugins
