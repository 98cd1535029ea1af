// Package openapi derives table columns from OpenAPI 3 component schemas and
// turns decoded records into table rows. Documents can come from disk, an
// fs.FS, or HTTP.
//
// Column hints are read from schema property extensions:
//
//	x-table-order     number used to order columns (lower first)
//	x-table-template  cell template reference applied to the column
//	x-table-sortable  marks the column as sortable
//	x-table-hidden    excludes the property from the table
package openapi
