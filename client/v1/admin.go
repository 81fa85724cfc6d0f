package v1

import "context"

type RAProfileService struct {
	client   *Client
	endpoint string
}

func (svc *RAProfileService) Create(ctx context.Context, req *RAProfileRequest) (*RAProfile, error) {
	var profile RAProfile
	if err := svc.client.sendJSON(ctx, svc.client.client.Post("%s", svc.endpoint).JSON(req), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (svc *RAProfileService) List(ctx context.Context) ([]*RAProfile, error) {
	var items []*RAProfile
	if err := svc.client.sendJSON(ctx, svc.client.client.Get("%s", svc.endpoint), &items); err != nil {
		return nil, err
	}
	return items, nil
}

type GroupService struct {
	client   *Client
	endpoint string
}

func (svc *GroupService) Create(ctx context.Context, req *GroupRequest) (*Group, error) {
	var group Group
	if err := svc.client.sendJSON(ctx, svc.client.client.Post("%s", svc.endpoint).JSON(req), &group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (svc *GroupService) List(ctx context.Context) ([]*Group, error) {
	var items []*Group
	if err := svc.client.sendJSON(ctx, svc.client.client.Get("%s", svc.endpoint), &items); err != nil {
		return nil, err
	}
	return items, nil
}

type ComplianceRuleService struct {
	client   *Client
	endpoint string
}

func (svc *ComplianceRuleService) Create(ctx context.Context, req *ComplianceRuleRequest) (*ComplianceRule, error) {
	var rule ComplianceRule
	if err := svc.client.sendJSON(ctx, svc.client.client.Post("%s", svc.endpoint).JSON(req), &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

func (svc *ComplianceRuleService) List(ctx context.Context) ([]*ComplianceRule, error) {
	var items []*ComplianceRule
	if err := svc.client.sendJSON(ctx, svc.client.client.Get("%s", svc.endpoint), &items); err != nil {
		return nil, err
	}
	return items, nil
}
