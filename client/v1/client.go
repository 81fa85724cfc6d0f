package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/whitekid/goxp/log"
	"github.com/whitekid/goxp/request"

	"certhub/client/common"
)

func New(endpoint string) *Client { return WithClient(endpoint, &http.Client{}) }
func WithClient(endpoint string, client *http.Client) *Client {
	return &Client{
		endpoint: endpoint,
		client:   request.NewSession(client),
	}
}

type Client struct {
	endpoint string
	client   request.Interface
}

func (c *Client) Certificates() *CertificateService {
	return &CertificateService{client: c, endpoint: c.endpoint + "/certificates"}
}

func (c *Client) RAProfiles() *RAProfileService {
	return &RAProfileService{client: c, endpoint: c.endpoint + "/raprofiles"}
}

func (c *Client) Groups() *GroupService {
	return &GroupService{client: c, endpoint: c.endpoint + "/groups"}
}

func (c *Client) ComplianceRules() *ComplianceRuleService {
	return &ComplianceRuleService{client: c, endpoint: c.endpoint + "/complianceRules"}
}

func (c *Client) Principals() *PrincipalService {
	return &PrincipalService{client: c, endpoint: c.endpoint + "/principals"}
}

// sendRequest send request and returns ProblemDetail as error if failed
func (c *Client) sendRequest(ctx context.Context, req *request.Request) (*request.Response, error) {
	log.Debugf("send request: %s", req.URL)

	resp, err := req.Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}

	if !resp.Success() {
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.Wrap(err, "body read failed")
		}

		problem := &common.ProblemDetail{}
		if err := json.Unmarshal(body, problem); err != nil || problem.Status == 0 {
			return nil, &common.ProblemDetail{Status: resp.StatusCode, Title: http.StatusText(resp.StatusCode), Detail: string(body)}
		}

		return nil, problem
	}

	return resp, nil
}

// sendJSON send request and decode response to out, if out is not nil
func (c *Client) sendJSON(ctx context.Context, req *request.Request, out interface{}) error {
	resp, err := c.sendRequest(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// accepted and no content responses have no body
	if out == nil || resp.StatusCode == http.StatusAccepted || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	return resp.JSON(out)
}

// newRequest request with method which is not supported by session
func newRequest(method string, format string, args ...interface{}) *request.Request {
	return request.New(method, fmt.Sprintf(format, args...))
}

func asyncQuery(async bool) string {
	if async {
		return "?async=true"
	}
	return ""
}
