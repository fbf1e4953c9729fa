// Package report renders a static snapshot of the training history: an
// HTML page with headline numbers, due buckets, misses, recent attempts and
// per-theme accuracy, and optionally the same tables as an XLSX workbook.
package report
