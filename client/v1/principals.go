package v1

import (
	"context"
	"net/http"
)

func (svc *CertificateService) Locations(ctx context.Context, uuid string) ([]*Location, error) {
	var items []*Location
	if err := svc.client.sendJSON(ctx, svc.client.client.Get("%s/%s/locations", svc.endpoint, uuid), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (svc *CertificateService) AddLocation(ctx context.Context, uuid string, location string) (*Location, error) {
	var created Location
	req := svc.client.client.Post("%s/%s/locations", svc.endpoint, uuid).JSON(&LocationRequest{Location: location})
	if err := svc.client.sendJSON(ctx, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (svc *CertificateService) RemoveLocation(ctx context.Context, uuid string, location string) error {
	req := newRequest(http.MethodDelete, "%s/%s/locations", svc.endpoint, uuid).Query("location", location)
	return svc.client.sendJSON(ctx, req, nil)
}

type PrincipalService struct {
	client   *Client
	endpoint string
}

func (svc *PrincipalService) Create(ctx context.Context, req *PrincipalRequest) (*Principal, error) {
	var principal Principal
	if err := svc.client.sendJSON(ctx, svc.client.client.Post("%s", svc.endpoint).JSON(req), &principal); err != nil {
		return nil, err
	}
	return &principal, nil
}

func (svc *PrincipalService) List(ctx context.Context) ([]*Principal, error) {
	var items []*Principal
	if err := svc.client.sendJSON(ctx, svc.client.client.Get("%s", svc.endpoint), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Update bind, unbind, enable or disable principal
func (svc *PrincipalService) Update(ctx context.Context, uuid string, req *PrincipalUpdateRequest) (*Principal, error) {
	var principal Principal
	if err := svc.client.sendJSON(ctx, newRequest(http.MethodPatch, "%s/%s", svc.endpoint, uuid).JSON(req), &principal); err != nil {
		return nil, err
	}
	return &principal, nil
}
