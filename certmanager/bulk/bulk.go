// Package bulk batched mutation and deletion of certificates selected by uuids or filters
package bulk

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/whitekid/goxp/fx"
	"github.com/whitekid/goxp/log"

	"certhub/certmanager/history"
	"certhub/certmanager/search"
	"certhub/certmanager/store"
	"certhub/certmanager/types"
	"certhub/pkg/metrics"
)

const defaultBatchSize = 1000

// Selector selects certificates by uuids or filters, exclusively.
// empty but not nil Filters selects all certificates
type Selector struct {
	IDs     []string        `json:"uuids,omitempty"`
	Filters []*types.Filter `json:"filters,omitempty"`
}

func (s *Selector) validate() error {
	switch {
	case len(s.IDs) > 0 && s.Filters != nil:
		return errors.Wrap(types.ErrValidation, "uuids and filters are exclusive")
	case len(s.IDs) == 0 && s.Filters == nil:
		return errors.Wrap(types.ErrValidation, "uuids or filters required")
	}
	return nil
}

// UpdateRequest bulk update request. nil field is not changed, empty string clears the field
type UpdateRequest struct {
	Selector

	RAProfileID *string `json:"raProfileUuid,omitempty"`
	GroupID     *string `json:"groupUuid,omitempty"`
	Owner       *string `json:"owner,omitempty"`
}

// Validate check selector and update fields
func (r *UpdateRequest) Validate() error {
	if err := r.Selector.validate(); err != nil {
		return err
	}

	if r.RAProfileID == nil && r.GroupID == nil && r.Owner == nil {
		return errors.Wrap(types.ErrValidation, "nothing to update")
	}
	return nil
}

// DeleteRequest bulk delete request
type DeleteRequest struct {
	Selector
}

func (r *DeleteRequest) Validate() error { return r.Selector.validate() }

// Orchestrator runs bulk operations in batches and records one history event per changed certificate
type Orchestrator struct {
	store     store.Interface
	compiler  *search.Compiler
	sink      history.Sink
	batchSize int
}

func New(s store.Interface, compiler *search.Compiler, sink history.Sink, batchSize int) *Orchestrator {
	return &Orchestrator{
		store:     s,
		compiler:  compiler,
		sink:      sink,
		batchSize: fx.Ternary(batchSize <= 0, defaultBatchSize, batchSize),
	}
}

// batchFunc process batch and returns outcome of each certificate and its history events
type batchFunc func(ctx context.Context, certs []*types.Certificate) ([]types.Outcome, []*types.Event)

// run select certificates and call fn with batches
func (o *Orchestrator) run(ctx context.Context, operation string, sel *Selector, fn batchFunc) ([]types.Outcome, error) {
	outcomes := []types.Outcome{}
	events := []*types.Event{}

	process := func(ctx context.Context, certs []*types.Certificate) error {
		metrics.BulkBatches.WithLabelValues(operation).Inc()

		batchOutcomes, batchEvents := fn(ctx, certs)
		outcomes = append(outcomes, batchOutcomes...)
		events = append(events, batchEvents...)
		return nil
	}

	if len(sel.IDs) > 0 {
		ids := uniqueIDs(sel.IDs)
		certs := make([]*types.Certificate, 0, len(ids))
		for _, id := range ids {
			cert, err := o.store.GetCertificate(ctx, id)
			if err != nil {
				outcomes = append(outcomes, types.FailedOutcome(id, err))
				continue
			}
			certs = append(certs, cert)
		}

		for start := 0; start < len(certs); start += o.batchSize {
			process(ctx, certs[start:fx.Ternary(start+o.batchSize > len(certs), len(certs), start+o.batchSize)])
		}
	} else {
		selection, err := o.compiler.Compile(sel.Filters)
		if err != nil {
			return nil, err
		}

		if err := selection.ForEachBatch(ctx, o.batchSize, process); err != nil {
			return outcomes, errors.Wrapf(err, "bulk %s failed", operation)
		}
	}

	o.sink.Record(events...)

	succeeded := len(fx.Filter(outcomes, func(x types.Outcome) bool { return x.Success }))
	metrics.BulkItems.WithLabelValues(operation, "success").Add(float64(succeeded))
	metrics.BulkItems.WithLabelValues(operation, "failed").Add(float64(len(outcomes) - succeeded))
	log.Infof("bulk %s done: success=%d, failed=%d", operation, succeeded, len(outcomes)-succeeded)

	return outcomes, nil
}

// uniqueIDs returns ids without duplicates, keeping first occurrence order
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	return fx.Filter(ids, func(id string) bool {
		if _, ok := seen[id]; ok {
			return false
		}
		seen[id] = struct{}{}
		return true
	})
}

// Update change ra profile, group or owner of selected certificates.
// target ra profile or group which does not exist fails whole request
func (o *Orchestrator) Update(ctx context.Context, req *UpdateRequest) ([]types.Outcome, error) {
	log.Debugf("Update(): uuids=%d, filters=%d", len(req.IDs), len(req.Filters))

	if err := req.Validate(); err != nil {
		return nil, err
	}

	change, err := o.newChange(ctx, req)
	if err != nil {
		return nil, err
	}

	return o.run(ctx, "update", &req.Selector, func(ctx context.Context, certs []*types.Certificate) ([]types.Outcome, []*types.Event) {
		ids := fx.Map(certs, func(c *types.Certificate) uint { return c.ID })
		if err := o.store.UpdateCertificates(ctx, ids, change.update); err != nil {
			log.Errorf("bulk update batch failed: %+v", err)
			return fx.Map(certs, func(c *types.Certificate) types.Outcome { return types.FailedOutcome(c.UUID, err) }), nil
		}

		events := fx.Map(certs, change.event)

		return fx.Map(certs, func(c *types.Certificate) types.Outcome { return types.SuccessOutcome(c.UUID) }), events
	})
}

// change resolved update and its history
type change struct {
	update    store.CertificateUpdate
	raProfile *types.RAProfile
	group     *types.Group
	owner     *string
	req       *UpdateRequest
}

func (o *Orchestrator) newChange(ctx context.Context, req *UpdateRequest) (*change, error) {
	c := &change{req: req}

	if req.RAProfileID != nil {
		var id *uint
		if *req.RAProfileID != "" {
			profile, err := o.store.GetRAProfile(ctx, *req.RAProfileID)
			if err != nil {
				return nil, err
			}
			c.raProfile = profile
			id = &profile.ID
		}
		c.update.RAProfile = &store.RefUpdate{ID: id}
	}

	if req.GroupID != nil {
		var id *uint
		if *req.GroupID != "" {
			group, err := o.store.GetGroup(ctx, *req.GroupID)
			if err != nil {
				return nil, err
			}
			c.group = group
			id = &group.ID
		}
		c.update.Group = &store.RefUpdate{ID: id}
	}

	if req.Owner != nil {
		c.owner = fx.Ternary(*req.Owner == "", nil, req.Owner)
		c.update.Owner = &store.OwnerUpdate{Owner: c.owner}
	}

	return c, nil
}

func profileName(p *types.RAProfile) string {
	if p == nil {
		return ""
	}
	return p.Name
}

func groupName(g *types.Group) string {
	if g == nil {
		return ""
	}
	return g.Name
}

func ownerName(o *string) string {
	if o == nil {
		return ""
	}
	return *o
}

// event returns history event of cert and apply change to cert.
// change of single attribute has its own event type, otherwise UPDATE with all changes
func (c *change) event(cert *types.Certificate) *types.Event {
	type attrChange struct {
		name    string
		event   types.EventType
		message string
	}
	changes := []attrChange{}

	if c.req.RAProfileID != nil {
		changes = append(changes, attrChange{"raProfile", types.EventUpdateRAProfile,
			types.ChangeMessage(profileName(cert.RAProfile), profileName(c.raProfile))})
		cert.RAProfile = c.raProfile
	}

	if c.req.GroupID != nil {
		changes = append(changes, attrChange{"group", types.EventUpdateGroup,
			types.ChangeMessage(groupName(cert.Group), groupName(c.group))})
		cert.Group = c.group
	}

	if c.req.Owner != nil {
		changes = append(changes, attrChange{"owner", types.EventUpdateOwner,
			types.ChangeMessage(ownerName(cert.Owner), ownerName(c.owner))})
		cert.Owner = c.owner
	}

	if len(changes) == 1 {
		return types.NewEvent(cert.UUID, changes[0].event, types.EventSuccess, changes[0].message)
	}

	messages := fx.Map(changes, func(x attrChange) string { return x.name + ": " + x.message })
	return types.NewEvent(cert.UUID, types.EventUpdate, types.EventSuccess, strings.Join(messages, "; "))
}

// Delete delete selected certificates. certificate bound to enabled principal is not deleted
func (o *Orchestrator) Delete(ctx context.Context, req *DeleteRequest) ([]types.Outcome, error) {
	log.Debugf("Delete(): uuids=%d, filters=%d", len(req.IDs), len(req.Filters))

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return o.run(ctx, "delete", &req.Selector, func(ctx context.Context, certs []*types.Certificate) ([]types.Outcome, []*types.Event) {
		outcomes := make([]types.Outcome, 0, len(certs))
		events := make([]*types.Event, 0, len(certs))

		for _, cert := range certs {
			if err := DeleteCertificate(ctx, o.store, cert); err != nil {
				outcomes = append(outcomes, types.FailedOutcome(cert.UUID, err))
				events = append(events, types.NewEvent(cert.UUID, types.EventDelete, types.EventFailed, err.Error()))
				continue
			}

			outcomes = append(outcomes, types.SuccessOutcome(cert.UUID))
			events = append(events, types.NewEvent(cert.UUID, types.EventDelete, types.EventSuccess, "certificate deleted"))
		}

		return outcomes, events
	})
}

// DeleteCertificate delete certificate unless enabled principal refers it
func DeleteCertificate(ctx context.Context, s store.Interface, cert *types.Certificate) error {
	principals, err := s.CountActivePrincipals(ctx, cert.ID)
	if err != nil {
		return err
	}

	if principals > 0 {
		return errors.Wrapf(types.ErrValidation, "certificate %s is used by %d principals", cert.UUID, principals)
	}

	contentDeleted, err := s.DeleteCertificate(ctx, cert.ID)
	if err != nil {
		return err
	}

	log.Debugf("certificate %s deleted: contentDeleted=%v", cert.UUID, contentDeleted)
	return nil
}
