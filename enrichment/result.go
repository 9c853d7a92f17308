// Package enrichment queries the CNPJá office lookup API for each company
// in a dataset and flattens the responses into the enrichment columns of
// the output table.
package enrichment

// ErrorKind classifies how a single lookup failed. The kind is written
// verbatim into the api_error output column.
type ErrorKind string

const (
	// ErrInvalidFormat marks identifiers that did not normalize to 14
	// digits; no network call is made for them.
	ErrInvalidFormat ErrorKind = "invalid_format"
	// ErrNetwork marks transport failures that survived every retry.
	ErrNetwork ErrorKind = "network_error"
	// ErrRateLimited marks HTTP 429 responses that survived every retry.
	ErrRateLimited ErrorKind = "rate_limited"
	// ErrHTTP marks any other non-2xx status; these are never retried.
	ErrHTTP ErrorKind = "http_error"
	// ErrParse marks 2xx responses whose body was not valid JSON.
	ErrParse ErrorKind = "parse_error"
)

// Result is the outcome of one lookup for one identifier. Exactly one of
// Payload (success) or ErrorKind (failure) is set; the constructors below
// are the only way results are built, which keeps the two branches
// exhaustive.
type Result struct {
	Success     bool
	HTTPStatus  int // 0 when no HTTP response was received
	ErrorKind   ErrorKind
	ErrorDetail string
	Payload     *Office
}

func successResult(payload *Office, status int) Result {
	return Result{
		Success:    true,
		HTTPStatus: status,
		Payload:    payload,
	}
}

func failureResult(kind ErrorKind, detail string, status int) Result {
	return Result{
		Success:     false,
		HTTPStatus:  status,
		ErrorKind:   kind,
		ErrorDetail: detail,
	}
}
