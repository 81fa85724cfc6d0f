package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"certhub/certmanager"
	v1 "certhub/client/v1"
	"certhub/pkg/helper"
)

// @Summary locations where certificate is installed
// @Produce json
// @Param   certificate_id path  string true "certificate uuid"
// @Success 200            {array} v1.Location
// @Router  /certificates/{certificate_id}/locations [get]
func (app *v1API) listLocations(c echo.Context) error {
	items, err := app.repository.ListLocations(c.Request().Context(), c.(*Context).certificateID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, items)
}

// @Summary add location of certificate
// @Accept  json
// @Produce json
// @Param   certificate_id path     string             true "certificate uuid"
// @Param   body           body     v1.LocationRequest true "location"
// @Success 201            {object} v1.Location
// @Router  /certificates/{certificate_id}/locations [post]
func (app *v1API) addLocation(c echo.Context) error {
	var req v1.LocationRequest
	if err := helper.Bind(c, &req); err != nil {
		return err
	}

	location, err := app.repository.AddLocation(c.Request().Context(), c.(*Context).certificateID, req.Location)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, location)
}

// @Summary remove location of certificate
// @Param   certificate_id path  string true "certificate uuid"
// @Param   location       query string true "location"
// @Success 204
// @Router  /certificates/{certificate_id}/locations [delete]
func (app *v1API) removeLocation(c echo.Context) error {
	location := c.QueryParam("location")
	if location == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "location is required")
	}

	if err := app.repository.RemoveLocation(c.Request().Context(), c.(*Context).certificateID, location); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// @Summary create principal
// @Accept  json
// @Produce json
// @Param   body body     v1.PrincipalRequest true "principal"
// @Success 201  {object} v1.Principal
// @Router  /principals [post]
func (app *v1API) createPrincipal(c echo.Context) error {
	var req v1.PrincipalRequest
	if err := helper.Bind(c, &req); err != nil {
		return err
	}

	principal, err := app.repository.CreatePrincipal(c.Request().Context(), &certmanager.Principal{
		Name:    req.Name,
		Kind:    req.Kind,
		Enabled: req.Enabled,
	}, req.CertificateUUID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, principal)
}

// @Summary list principals
// @Produce json
// @Success 200 {array} v1.Principal
// @Router  /principals [get]
func (app *v1API) listPrincipals(c echo.Context) error {
	items, err := app.repository.ListPrincipals(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, items)
}

// @Summary bind, unbind, enable or disable principal
// @Accept  json
// @Produce json
// @Param   principal_id path     string                    true "principal uuid"
// @Param   body         body     v1.PrincipalUpdateRequest true "changes"
// @Success 200          {object} v1.Principal
// @Router  /principals/{principal_id} [patch]
func (app *v1API) updatePrincipal(c echo.Context) error {
	var req v1.PrincipalUpdateRequest
	if err := helper.Bind(c, &req); err != nil {
		return err
	}

	principal, err := app.repository.UpdatePrincipal(c.Request().Context(), c.(*Context).principalID, &certmanager.PrincipalUpdateRequest{
		CertificateUUID: req.CertificateUUID,
		Enabled:         req.Enabled,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, principal)
}
