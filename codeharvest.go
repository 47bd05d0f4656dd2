// Package codeharvest harvests source code examples from documentation
// sites. A discovery pass reads an index page into a list of targets, and a
// harvest pass fetches every target page, extracts its code fragment and
// writes it to a local file.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, rod/, fs/).
package codeharvest
