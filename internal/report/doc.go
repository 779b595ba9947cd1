// Package report renders ANI result tables and cache dumps.
//
// All writers are deterministic: genome ids are sorted lexicographically so
// repeated runs produce byte-identical files regardless of completion order.
package report
