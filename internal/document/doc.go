// Package document holds the proxy agent configuration document and every
// operation that derives a new version of it.
//
// A Document is treated as an immutable value. Update, Add and Delete never
// modify their input; they return a new Document in which only the touched
// section (and, for list sections, the touched entry) has been copied.
// Untouched slices are shared between versions.
//
// # Schema
//
// Schema is the single description of each section: its title, the JSON key
// it is stored under, whether it is a list, and the ordered fields that make
// up one record. The terminal editor renders fields in Schema order and the
// patch functions resolve field positions through the same Schema, so the
// two can never disagree. Schema field names are checked against the record
// types when the package is initialised.
//
// # Views
//
// Sorting and filtering of proxies are presentation concerns. SortProxies and
// FilterProxies return IndexedProxy values that remember the canonical index
// of each entry, and the canonical order inside a Document is never changed
// by a view.
//
// # Usage Example
//
//	doc, err := document.Decode(body)
//	if err != nil {
//	    return err
//	}
//
//	// Set the port of the first server
//	doc, err = doc.Update(document.SectionServers, "8080", 0, 2)
//
//	// Append a placeholder proxy
//	doc, err = doc.Add(document.SectionProxies)
package document
