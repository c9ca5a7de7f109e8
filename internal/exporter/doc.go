// Package exporter writes analysis results to disk.
//
// PropertyTable maintains the "mechanical property.csv" result table, one
// row per exported specimen, replacing the file atomically on each append.
// WorkbookExporter renders an xlsx report with the trimmed curve and the
// derived properties.
package exporter
