// Package http implements the HTTP handlers of the renderer API. Handlers
// are thin: they decode and validate requests, call a service and render
// the result. Every failure goes through errors.ErrorHandler so that
// clients always receive an RFC 7807 problem.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Pipeline
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Handler Structure
//
//	func (h *AnalysisHandler) Export(w http.ResponseWriter, r *http.Request) {
//	    var req api.ExportRequest
//	    if err := h.validator.Decode(r, &req); err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//	    result, err := h.service.Export(r.Context(), req.Directory)
//	    ...
//	    render.JSON(w, r, result)
//	}
//
// # Testing
//
// Handlers depend on AnalysisServiceInterface, which tests replace with a
// testify mock.
package http
