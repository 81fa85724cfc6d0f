package common

import "fmt"

const MIMEProblemDetail = "application/problem+json"

// ProblemDetail problem details for HTTP api: RFC7807
type ProblemDetail struct {
	Type     string `json:"type"` // problem type URI reference
	Title    string `json:"title"`
	Status   int    `json:"status"` // http status code
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"` // request path where the problem occurred
}

func (p *ProblemDetail) Error() string {
	if p.Detail == "" {
		return p.Title
	}
	return fmt.Sprintf("%s: %s", p.Title, p.Detail)
}

// problem types
const (
	ProblemNotFound      = "urn:certhub:problem:notFound"
	ProblemConflict      = "urn:certhub:problem:conflict"
	ProblemBadRequest    = "urn:certhub:problem:badRequest"
	ProblemConnector     = "urn:certhub:problem:connector"
	ProblemQueueFull     = "urn:certhub:problem:queueFull"
	ProblemInternalError = "urn:certhub:problem:internal"
)
