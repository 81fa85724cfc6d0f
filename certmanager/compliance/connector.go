// Package compliance evaluates certificates against external compliance connector
package compliance

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/whitekid/goxp/log"
	"github.com/whitekid/goxp/request"

	"certhub/certmanager/types"
)

// RuleStatus verdict of a rule
type RuleStatus string

const (
	RuleOK            RuleStatus = "ok"
	RuleNotOK         RuleStatus = "nok"
	RuleNotApplicable RuleStatus = "na"
)

// Request compliance check request
type Request struct {
	Kind        string         `json:"-"`
	Certificate string         `json:"certificate"` // PEM
	Rules       []*RequestRule `json:"rules"`
}

type RequestRule struct {
	UUID string `json:"uuid"`
	Name string `json:"name,omitempty"`
}

// Response compliance check response
type Response struct {
	Status RuleStatus      `json:"status"`
	Rules  []*ResponseRule `json:"rules"`
}

type ResponseRule struct {
	UUID   string     `json:"uuid"`
	Name   string     `json:"name,omitempty"`
	Status RuleStatus `json:"status"`
}

// Connector compliance provider
type Connector interface {
	Check(ctx context.Context, req *Request) (*Response, error)
}

// NewHTTPConnector create connector which posts to {endpoint}/v1/complianceProvider/{kind}/compliance
func NewHTTPConnector(endpoint string, timeout time.Duration) Connector {
	return &httpConnector{
		endpoint: endpoint,
		timeout:  timeout,
		client:   request.NewSession(&http.Client{}),
	}
}

type httpConnector struct {
	endpoint string
	timeout  time.Duration
	client   request.Interface
}

func (c *httpConnector) Check(ctx context.Context, req *Request) (*Response, error) {
	log.Debugf("Check(): endpoint=%s, kind=%s, rules=%d", c.endpoint, req.Kind, len(req.Rules))

	if c.endpoint == "" {
		return nil, errors.Wrap(types.ErrConnector, "connector endpoint not configured")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.Post("%s/v1/complianceProvider/%s/compliance", c.endpoint, req.Kind).JSON(req).Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(types.ErrConnector, "%s", err)
	}
	defer resp.Body.Close()

	if !resp.Success() {
		return nil, errors.Wrapf(types.ErrConnector, "failed with status %d", resp.StatusCode)
	}

	var result Response
	if err := resp.JSON(&result); err != nil {
		return nil, errors.Wrapf(types.ErrConnector, "invalid response: %s", err)
	}

	return &result, nil
}
