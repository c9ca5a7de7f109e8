// Package services implements the business logic layer of the analyzer.
// It sits between the HTTP handlers and the numeric pipeline, holds the
// active dataset and its editable session, and fans changes out to
// connected renderers.
//
// # Services
//
//	- AnalysisService: loads logs, serves tables, charts and workbooks,
//	  applies session edits and appends export rows
//	- HealthService: liveness, readiness and version information
//
// # Loading
//
// A load builds a complete analysis and a fresh session before touching
// the active state. A failed load leaves the previous dataset in place:
//
//	resp, err := svc.Load(ctx, api.LoadAnalysisRequest{Path: path})
//	if err != nil {
//	    // previous dataset still served
//	}
//
// # Error Handling
//
// Services return *errors.AppError values that the transport layer maps
// to RFC 7807 problems:
//
//	- PARSING for unreadable logs
//	- NO_STIFFNESS when a stiffness or slope is required but absent
//	- NOT_FOUND before the first load
//	- EXPORT_IO when the property table cannot be written
package services
