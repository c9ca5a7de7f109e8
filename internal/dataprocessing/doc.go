// Package dataprocessing turns raw instrument logs into engineering properties.
//
// # Pipeline
//
//	log lines → ParseLines → Normalize → Trim → EstimateStiffness
//	                                          → ComputeMetrics
//
// Every stage returns a new Table; inputs are never modified. Processor
// runs the stages in order for a chosen x/y column pair.
//
// # Usage
//
//	p := dataprocessing.NewProcessor(dataprocessing.DefaultOptions(), logger)
//	analysis, err := p.ProcessFile(ctx, "specimen-04.txt")
//	if err != nil {
//	    return err
//	}
//	if analysis.Stiffness != nil {
//	    fmt.Println(analysis.Stiffness.MaxSlope)
//	}
//
// # Errors
//
// Parsing failures are *errors.AppError values of type PARSING carrying the
// offending line number. A curve without a fittable linear region yields
// ErrNoStiffnessFound from EstimateStiffness and a nil Stiffness from
// Processor.
package dataprocessing
