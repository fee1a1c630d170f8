// Package commands maps the named commands of the desktop UI onto backend
// HTTP calls.
//
// Each Command describes a method, a path that may contain {arg}
// placeholders, optional query parameters, and how the request body is built
// from the caller's JSON arguments. Payloads are passed through untouched;
// the bridge never interprets them.
//
//	req, err := commands.Resolve("update_document_metadata",
//	    json.RawMessage(`{"id":"doc-1","metadata":{"title":"Q3"}}`))
//	// req.Method == "PUT"
//	// req.Path   == "/api/ingestion/documents/doc-1/metadata"
//	// req.Body   == {"title":"Q3"}
package commands
