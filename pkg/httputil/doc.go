// Package httputil provides HTTP handler utilities: JSON body and path/query
// parsing, the admin API response envelope, and the mapping from auth error
// kinds to HTTP status codes.
//
// Every response body is the envelope {code, msg, data}: code 0 on success,
// 1 on failure, with the HTTP status carrying the transport-level meaning.
package httputil
