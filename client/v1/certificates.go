package v1

import (
	"context"
	"encoding/base64"
	"net/http"

	"certhub/pkg/helper/x509x"
)

type CertificateService struct {
	client   *Client
	endpoint string
}

// Upload upload certificate. fails if certificate with same serial number already exists
func (svc *CertificateService) Upload(ctx context.Context, req *UploadRequest) (*Certificate, error) {
	var cert Certificate
	if err := svc.client.sendJSON(ctx, svc.client.client.Post("%s", svc.endpoint).JSON(req), &cert); err != nil {
		return nil, err
	}
	return &cert, nil
}

// EncodeContent returns PEM as is, otherwise base64 encoded content
func EncodeContent(content []byte) string {
	if x509x.IsPEM(content) {
		return string(content)
	}
	return base64.StdEncoding.EncodeToString(content)
}

// Import store certificate if not exists. content is PEM or DER
func (svc *CertificateService) Import(ctx context.Context, content []byte) (*ImportResponse, error) {
	var res ImportResponse
	if err := svc.client.sendJSON(ctx, svc.client.client.Post("%s/import", svc.endpoint).JSON(&ImportRequest{Certificate: EncodeContent(content)}), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (svc *CertificateService) List(ctx context.Context, req *ListRequest) (*CertificatePage, error) {
	var page CertificatePage
	if err := svc.client.sendJSON(ctx, svc.client.client.Post("%s/list", svc.endpoint).JSON(req), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (svc *CertificateService) SearchableFields(ctx context.Context) ([]SearchField, error) {
	var fields []SearchField
	if err := svc.client.sendJSON(ctx, svc.client.client.Get("%s/search", svc.endpoint), &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func (svc *CertificateService) Get(ctx context.Context, uuid string) (*Certificate, error) {
	var cert Certificate
	if err := svc.client.sendJSON(ctx, svc.client.client.Get("%s/%s", svc.endpoint, uuid), &cert); err != nil {
		return nil, err
	}
	return &cert, nil
}

func (svc *CertificateService) History(ctx context.Context, uuid string) ([]*Event, error) {
	var events []*Event
	if err := svc.client.sendJSON(ctx, svc.client.client.Get("%s/%s/history", svc.endpoint, uuid), &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (svc *CertificateService) Update(ctx context.Context, uuid string, req *UpdateRequest) (*Certificate, error) {
	var cert Certificate
	if err := svc.client.sendJSON(ctx, newRequest(http.MethodPatch, "%s/%s", svc.endpoint, uuid).JSON(req), &cert); err != nil {
		return nil, err
	}
	return &cert, nil
}

func (svc *CertificateService) Delete(ctx context.Context, uuid string) error {
	return svc.client.sendJSON(ctx, newRequest(http.MethodDelete, "%s/%s", svc.endpoint, uuid), nil)
}

func (svc *CertificateService) Revoke(ctx context.Context, uuid string) (*Certificate, error) {
	var cert Certificate
	if err := svc.client.sendJSON(ctx, svc.client.client.Post("%s/%s/revoke", svc.endpoint, uuid), &cert); err != nil {
		return nil, err
	}
	return &cert, nil
}

// DownloadChain download issuers of certificate by AIA
func (svc *CertificateService) DownloadChain(ctx context.Context, uuid string) (int, error) {
	var res ChainResponse
	if err := svc.client.sendJSON(ctx, svc.client.client.Post("%s/%s/chain", svc.endpoint, uuid), &res); err != nil {
		return 0, err
	}
	return res.Created, nil
}

// BulkUpdate returns outcome of each certificate. if async, returns nil outcomes when request is accepted
func (svc *CertificateService) BulkUpdate(ctx context.Context, req *BulkUpdateRequest, async bool) ([]Outcome, error) {
	var res BulkResponse
	if err := svc.client.sendJSON(ctx, svc.client.client.Post("%s/bulk/update%s", svc.endpoint, asyncQuery(async)).JSON(req), &res); err != nil {
		return nil, err
	}
	return res.Outcomes, nil
}

func (svc *CertificateService) BulkDelete(ctx context.Context, req *BulkDeleteRequest, async bool) ([]Outcome, error) {
	var res BulkResponse
	if err := svc.client.sendJSON(ctx, svc.client.client.Post("%s/bulk/delete%s", svc.endpoint, asyncQuery(async)).JSON(req), &res); err != nil {
		return nil, err
	}
	return res.Outcomes, nil
}

func (svc *CertificateService) CheckCompliance(ctx context.Context, req *ComplianceRequest) (*ComplianceResponse, error) {
	var res ComplianceResponse
	if err := svc.client.sendJSON(ctx, svc.client.client.Post("%s/compliance", svc.endpoint).JSON(req), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SweepIssuers link unlinked certificates to their issuers
func (svc *CertificateService) SweepIssuers(ctx context.Context) (int, error) {
	var res SweepResponse
	if err := svc.client.sendJSON(ctx, svc.client.client.Post("%s/issuers/sweep", svc.endpoint), &res); err != nil {
		return 0, err
	}
	return res.Linked, nil
}
