package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"certhub/certmanager"
	"certhub/certmanager/bulk"
	v1 "certhub/client/v1"
	"certhub/pkg/helper"
)

// uploadCertificate
//
// @Summary upload certificate
// @Accept  json
// @Produce json
// @Param   body body     v1.UploadRequest true "certificate"
// @Success 201  {object} v1.Certificate
// @Router  /certificates [post]
func (app *v1API) uploadCertificate(c echo.Context) error {
	var req v1.UploadRequest
	if err := helper.Bind(c, &req); err != nil {
		return err
	}

	cert, err := app.repository.Upload(c.Request().Context(), []byte(req.Certificate), req.Type, req.Meta)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, cert)
}

// importCertificate store certificate if not exists
//
// @Summary import certificate
// @Accept  json
// @Produce json
// @Param   body body     v1.ImportRequest true "certificate"
// @Success 200  {object} v1.ImportResponse
// @Success 201  {object} v1.ImportResponse
// @Router  /certificates/import [post]
func (app *v1API) importCertificate(c echo.Context) error {
	var req v1.ImportRequest
	if err := helper.Bind(c, &req); err != nil {
		return err
	}

	cert, created, err := app.repository.Ingest(c.Request().Context(), []byte(req.Certificate))
	if err != nil {
		return err
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	return c.JSON(code, &v1.ImportResponse{Certificate: cert, Created: created})
}

// listCertificate
//
// @Summary list certificates by filters
// @Accept  json
// @Produce json
// @Param   body body     v1.ListRequest true "filters"
// @Success 200  {object} v1.CertificatePage
// @Router  /certificates/list [post]
func (app *v1API) listCertificate(c echo.Context) error {
	var req v1.ListRequest
	if err := helper.Bind(c, &req); err != nil {
		return err
	}

	page, err := app.repository.List(c.Request().Context(), req.Filters, req.Page, req.Size)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, page)
}

// searchableFields
//
// @Summary searchable fields and its conditions
// @Produce json
// @Success 200 {array} v1.SearchField
// @Router  /certificates/search [get]
func (app *v1API) searchableFields(c echo.Context) error {
	fields, err := app.repository.SearchableFields(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fields)
}

// @Summary get certificate
// @Produce json
// @Param   certificate_id path     string true "certificate uuid"
// @Success 200            {object} v1.Certificate
// @Router  /certificates/{certificate_id} [get]
func (app *v1API) getCertificate(c echo.Context) error {
	cert, err := app.repository.Get(c.Request().Context(), c.(*Context).certificateID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cert)
}

// @Summary update ra profile, group and owner of certificate
// @Accept  json
// @Produce json
// @Param   certificate_id path     string           true "certificate uuid"
// @Param   body           body     v1.UpdateRequest true "changes"
// @Success 200            {object} v1.Certificate
// @Router  /certificates/{certificate_id} [patch]
func (app *v1API) updateCertificate(c echo.Context) error {
	var req v1.UpdateRequest
	if err := helper.Bind(c, &req); err != nil {
		return err
	}

	cert, err := app.repository.Update(c.Request().Context(), c.(*Context).certificateID, &certmanager.UpdateRequest{
		RAProfileID: req.RAProfileUUID,
		GroupID:     req.GroupUUID,
		Owner:       req.Owner,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cert)
}

// @Summary delete certificate
// @Param   certificate_id path string true "certificate uuid"
// @Success 204
// @Router  /certificates/{certificate_id} [delete]
func (app *v1API) deleteCertificate(c echo.Context) error {
	if err := app.repository.Delete(c.Request().Context(), c.(*Context).certificateID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// @Summary certificate history
// @Produce json
// @Param   certificate_id path  string true "certificate uuid"
// @Success 200            {array} v1.Event
// @Router  /certificates/{certificate_id}/history [get]
func (app *v1API) certificateHistory(c echo.Context) error {
	events, err := app.repository.History(c.Request().Context(), c.(*Context).certificateID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, events)
}

// @Summary revoke certificate
// @Produce json
// @Param   certificate_id path     string true "certificate uuid"
// @Success 200            {object} v1.Certificate
// @Router  /certificates/{certificate_id}/revoke [post]
func (app *v1API) revokeCertificate(c echo.Context) error {
	cert, err := app.repository.Revoke(c.Request().Context(), c.(*Context).certificateID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cert)
}

// @Summary download issuers of certificate by AIA
// @Produce json
// @Param   certificate_id path     string true "certificate uuid"
// @Success 200            {object} v1.ChainResponse
// @Router  /certificates/{certificate_id}/chain [post]
func (app *v1API) downloadChain(c echo.Context) error {
	ctx := c.Request().Context()

	cert, err := app.repository.Get(ctx, c.(*Context).certificateID)
	if err != nil {
		return err
	}

	created, err := app.repository.DownloadChain(ctx, cert)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &v1.ChainResponse{Created: created})
}

// isAsync returns true if request asks background processing
func isAsync(c echo.Context) bool { return helper.ParseBoolDef(c.QueryParam("async"), false) }

// @Summary update certificates by uuids or filters
// @Accept  json
// @Produce json
// @Param   async query    bool                 false "run in background"
// @Param   body  body     v1.BulkUpdateRequest true  "selection and changes"
// @Success 200   {object} v1.BulkResponse
// @Success 202
// @Router  /certificates/bulk/update [post]
func (app *v1API) bulkUpdate(c echo.Context) error {
	var req v1.BulkUpdateRequest
	if err := helper.Bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	breq := &bulk.UpdateRequest{
		Selector:    bulk.Selector{IDs: req.UUIDs, Filters: req.Filters},
		RAProfileID: req.RAProfileUUID,
		GroupID:     req.GroupUUID,
		Owner:       req.Owner,
	}

	if isAsync(c) {
		if err := app.repository.BulkUpdateAsync(ctx, breq); err != nil {
			return err
		}
		return c.NoContent(http.StatusAccepted)
	}

	outcomes, err := app.repository.BulkUpdate(ctx, breq)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &v1.BulkResponse{Outcomes: outcomes})
}

// @Summary delete certificates by uuids or filters
// @Accept  json
// @Produce json
// @Param   async query    bool                 false "run in background"
// @Param   body  body     v1.BulkDeleteRequest true  "selection"
// @Success 200   {object} v1.BulkResponse
// @Success 202
// @Router  /certificates/bulk/delete [post]
func (app *v1API) bulkDelete(c echo.Context) error {
	var req v1.BulkDeleteRequest
	if err := helper.Bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	breq := &bulk.DeleteRequest{Selector: bulk.Selector{IDs: req.UUIDs, Filters: req.Filters}}

	if isAsync(c) {
		if err := app.repository.BulkDeleteAsync(ctx, breq); err != nil {
			return err
		}
		return c.NoContent(http.StatusAccepted)
	}

	outcomes, err := app.repository.BulkDelete(ctx, breq)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &v1.BulkResponse{Outcomes: outcomes})
}

// @Summary check compliance of certificates
// @Accept  json
// @Produce json
// @Param   body body     v1.ComplianceRequest true "certificates or ra profile"
// @Success 200  {object} v1.ComplianceResponse
// @Router  /certificates/compliance [post]
func (app *v1API) checkCompliance(c echo.Context) error {
	var req v1.ComplianceRequest
	if err := helper.Bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	if req.RAProfileUUID != "" {
		evaluated, err := app.repository.CheckProfileCompliance(ctx, req.RAProfileUUID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, &v1.ComplianceResponse{Evaluated: evaluated})
	}

	if len(req.UUIDs) == 0 {
		return errors.Wrap(certmanager.ErrValidation, "uuids or raProfileUuid required")
	}

	outcomes := app.repository.CheckCompliance(ctx, req.UUIDs)
	return c.JSON(http.StatusOK, &v1.ComplianceResponse{Outcomes: outcomes, Evaluated: len(outcomes)})
}

// @Summary link unlinked certificates to their issuers
// @Produce json
// @Success 200 {object} v1.SweepResponse
// @Router  /certificates/issuers/sweep [post]
func (app *v1API) sweepIssuers(c echo.Context) error {
	linked, err := app.repository.SweepIssuers(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &v1.SweepResponse{Linked: linked})
}
