// Package files lists instrument logs on disk for the renderer's file
// picker. The generated property table, spreadsheet lock files and
// anything without a log extension are skipped.
package files
