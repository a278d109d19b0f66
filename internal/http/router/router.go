// Package router wires the student handlers and the request pipeline into a
// single http.Handler.
//
// Route table:
//
//	GET    /api/v1/students        list (filter, sort, paginate)
//	POST   /api/v1/students        create
//	GET    /api/v1/students/{id}   read one
//	PUT    /api/v1/students/{id}   full replace
//	PATCH  /api/v1/students/{id}   partial update
//	DELETE /api/v1/students/{id}   delete
//	*      anything else           404 {"error": "Route <METHOD> <path> not found"}
package router

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/students-crud/internal/http/handlers/student"
	"github.com/aanand-mishra/students-crud/internal/http/middleware"
	"github.com/aanand-mishra/students-crud/internal/storage"
)

// New returns the fully assembled handler. Middleware order, outermost
// first: RequestID, APIVersion, Logger, Recoverer. Recoverer sits inside
// Logger so a recovered panic is logged with its 500 status.
func New(s storage.Storage, apiVersion string, log *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	const item = student.CollectionPath + "/{id}"

	mux.HandleFunc("GET "+student.CollectionPath, student.GetList(s))
	mux.HandleFunc("POST "+student.CollectionPath, student.New(s))
	mux.HandleFunc("GET "+item, student.GetByID(s))
	mux.HandleFunc("PUT "+item, student.Update(s))
	mux.HandleFunc("PATCH "+item, student.Patch(s))
	mux.HandleFunc("DELETE "+item, student.Delete(s))

	// "/" matches every method and path no other pattern claimed, so a
	// wrong method on a known path is also a 404 with the JSON body.
	mux.HandleFunc("/", middleware.NotFound)

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.APIVersion(apiVersion),
		middleware.Logger(log),
		middleware.Recoverer(log),
	)
}
