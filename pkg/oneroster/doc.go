// Package oneroster is a client for OneRoster-style roster APIs.
//
// # Overview
//
// The core type is Connection. It owns a lazily built Transport (an
// authenticated HTTP client bound to the API URL), executes calls, and
// classifies every received status:
//
//   - 2xx: a successful Response.
//   - 4xx, 500, 501, 503: a failed Response. No error is returned; the
//     caller decides what to do.
//   - 502: a failed Response. Gateway blips are not reported to the error
//     sink.
//   - 504: the error sink is told, then *GatewayTimeoutError is returned
//     and no Response.
//
// Transport failures come back as *TransportError. A 2xx with a JSON
// content type and a body that does not parse comes back as *DecodeError.
// The connection never retries.
//
//	conn, err := oneroster.NewConnection(oneroster.Config{
//	  AppID:     "app-id",
//	  AppSecret: "app-secret",
//	  APIURL:    "https://example.oneroster.com/ims/oneroster/v1p1",
//	  Logger:    oneroster.NewZerologLogger(log.Logger),
//	})
//	if err != nil { return err }
//
//	resp, err := conn.Execute(ctx, "/schools", oneroster.MethodGet, nil)
//	if err != nil { return err } // 504, transport or decode failure
//	if !resp.Success() { return oneroster.NewAPIError(oneroster.MethodGet, resp) }
//
//	for _, obj := range resp.Records("orgs") {
//	  school := oneroster.NewSchool(obj)
//	  _ = school
//	}
//
// GET calls get "limit" (PageLimit) and "offset" (0) unless the caller set
// them.
//
// # Records
//
// School, Tenant, Student, Teacher, Class and Enrollment are projections of
// the API's JSON objects. Missing fields are nil, never an error, and ToMap
// always returns every field.
//
// # Resource clients
//
// The orclient package builds a Client whose resource clients page through
// collections and turn failed responses into *APIError.
package oneroster
