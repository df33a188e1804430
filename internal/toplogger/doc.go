// Package toplogger provides an HTTP client for the TopLogger public API.
//
// # Overview
//
// spotwatch only reads from TopLogger. Three endpoints are used:
//
//   - GET /gyms: the gym directory (id, id_name, slug, name, name_short)
//   - GET /gyms/{id}/reservation_areas: reservable areas of a gym
//   - GET /gyms/{id}/slots?date=&reservation_area_id=&slim=true: slot windows
//
// All responses are JSON arrays decoded into the types in types.go.
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Wait on a shared rate.Limiter so many polling targets never burst the API
//   - Set Accept: application/json and User-Agent: spotwatch/0.1
//   - Have a 15-second timeout
//
// # Error Handling
//
//   - Network errors: "execute request: dial tcp: connection refused"
//   - HTTP errors: *StatusError, "api /gyms/6/slots returned status 500"
//   - Deserialization errors: "decode response: unexpected end of JSON input"
//
// StatusError.Gone reports 404/410, which callers treat as a permanent
// condition rather than a transient one.
//
// # URL Construction
//
// The base URL keeps its path so versioned roots work:
//
//   - "" → https://api.toplogger.nu/v1/
//   - "api.example.com/v2" → https://api.example.com/v2/
//   - "http://127.0.0.1:9000" → http://127.0.0.1:9000/
//
// # Thread Safety
//
// The Client is safe for concurrent use by every polling goroutine.
package toplogger
