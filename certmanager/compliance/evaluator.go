package compliance

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/whitekid/goxp/fx"
	"github.com/whitekid/goxp/log"

	"certhub/certmanager/history"
	"certhub/certmanager/parser"
	"certhub/certmanager/store"
	"certhub/certmanager/types"
	"certhub/pkg/metrics"
)

const defaultBatchSize = 1000

// Evaluator evaluate certificate compliance and stores its verdict
type Evaluator struct {
	store     store.Interface
	connector Connector
	sink      history.Sink
	batchSize int
}

func NewEvaluator(s store.Interface, connector Connector, sink history.Sink, batchSize int) *Evaluator {
	return &Evaluator{
		store:     s,
		connector: connector,
		sink:      sink,
		batchSize: fx.Ternary(batchSize <= 0, defaultBatchSize, batchSize),
	}
}

// Evaluate check certificate compliance with its ra profile rules.
// certificate without profile or with a profile without rules is not applicable.
// on connector failure, returns ErrConnector and stored status is not changed
func (e *Evaluator) Evaluate(ctx context.Context, cert *types.Certificate) (*types.ComplianceResult, error) {
	log.Debugf("Evaluate(): uuid=%s", cert.UUID)

	if cert.RAProfile == nil {
		return nil, e.save(ctx, cert, types.ComplianceNA, nil)
	}

	profile, err := e.store.GetRAProfile(ctx, cert.RAProfile.UUID)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to evaluate compliance of %s", cert.UUID)
	}

	if len(profile.Rules) == 0 {
		return nil, e.save(ctx, cert, types.ComplianceNA, nil)
	}

	pem, err := parser.EncodePEM(cert.Content)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to evaluate compliance of %s", cert.UUID)
	}

	resp, err := e.connector.Check(ctx, &Request{
		Kind:        profile.ComplianceKind,
		Certificate: string(pem),
		Rules: fx.Map(profile.Rules, func(r *types.ComplianceRule) *RequestRule {
			return &RequestRule{UUID: r.ConnectorRuleID, Name: r.Name}
		}),
	})
	if err != nil {
		metrics.ComplianceChecks.WithLabelValues("error").Inc()
		e.sink.Record(types.NewEvent(cert.UUID, types.EventComplianceCheck, types.EventFailed, err.Error()))
		return nil, errors.Wrapf(err, "fail to evaluate compliance of %s", cert.UUID)
	}

	result, err := e.mapResult(ctx, resp)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to evaluate compliance of %s", cert.UUID)
	}

	status := types.DeriveComplianceStatus(true, result)
	if err := e.save(ctx, cert, status, result); err != nil {
		return nil, err
	}

	return result, nil
}

// mapResult map connector rule ids to local rule ids. unknown rules are ignored
func (e *Evaluator) mapResult(ctx context.Context, resp *Response) (*types.ComplianceResult, error) {
	ruleIDs := fx.Map(resp.Rules, func(r *ResponseRule) string { return r.UUID })
	if len(ruleIDs) == 0 {
		return &types.ComplianceResult{}, nil
	}

	rules, err := e.store.ListComplianceRule(ctx, ruleIDs...)
	if err != nil {
		return nil, err
	}

	local := map[string]string{}
	fx.ForEach(rules, func(_ int, r *types.ComplianceRule) { local[r.ConnectorRuleID] = r.UUID })

	result := &types.ComplianceResult{}
	for _, r := range resp.Rules {
		id, ok := local[r.UUID]
		if !ok {
			log.Debugf("ignore unknown compliance rule %s", r.UUID)
			continue
		}

		switch r.Status {
		case RuleNotOK:
			result.NotOK = append(result.NotOK, id)
		case RuleNotApplicable:
			result.NotApplicable = append(result.NotApplicable, id)
		}
	}

	return result, nil
}

func (e *Evaluator) save(ctx context.Context, cert *types.Certificate, status types.ComplianceStatus, result *types.ComplianceResult) error {
	if err := e.store.UpdateCertificate(ctx, cert.ID, store.CertificateUpdate{
		Compliance: &store.ComplianceUpdate{Status: status, Result: result},
	}); err != nil {
		return errors.Wrapf(err, "fail to save compliance of %s", cert.UUID)
	}

	metrics.ComplianceChecks.WithLabelValues(string(status)).Inc()
	e.sink.Record(types.NewEvent(cert.UUID, types.EventComplianceCheck, types.EventSuccess, fmt.Sprintf("compliance status: %s", status)))

	cert.ComplianceStatus = status
	cert.ComplianceResult = result
	return nil
}

// EvaluateAll evaluate certificates by uuid and returns outcome of each
func (e *Evaluator) EvaluateAll(ctx context.Context, uuids []string) []types.Outcome {
	log.Debugf("EvaluateAll(): count=%d", len(uuids))

	return fx.Map(uuids, func(uuid string) types.Outcome {
		cert, err := e.store.GetCertificate(ctx, uuid)
		if err != nil {
			return types.FailedOutcome(uuid, err)
		}

		if _, err := e.Evaluate(ctx, cert); err != nil {
			return types.FailedOutcome(uuid, err)
		}

		return types.SuccessOutcome(uuid)
	})
}

// EvaluateProfile evaluate all certificates of ra profile. returns number of evaluated certificates
func (e *Evaluator) EvaluateProfile(ctx context.Context, profileUUID string) (int, error) {
	log.Debugf("EvaluateProfile(): profile=%s", profileUUID)

	profile, err := e.store.GetRAProfile(ctx, profileUUID)
	if err != nil {
		return 0, err
	}

	evaluated := 0
	var result error
	var before uint
	for {
		certs, err := e.store.ListCertificate(ctx, store.CertificateListOpt{RAProfileID: &profile.ID, Before: before, Limit: e.batchSize})
		if err != nil {
			return evaluated, errors.Wrapf(err, "fail to evaluate profile %s", profileUUID)
		}

		for _, cert := range certs {
			if _, err := e.Evaluate(ctx, cert); err != nil {
				result = multierror.Append(result, err)
				continue
			}
			evaluated++
		}

		if len(certs) < e.batchSize {
			break
		}
		before = certs[len(certs)-1].ID
	}

	log.Infof("profile %s compliance evaluated: %d", profile.Name, evaluated)
	return evaluated, result
}
