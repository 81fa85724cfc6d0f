package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"certhub/certmanager"
	v1 "certhub/client/v1"
	"certhub/pkg/helper"
)

// @Summary create ra profile
// @Accept  json
// @Produce json
// @Param   body body     v1.RAProfileRequest true "ra profile"
// @Success 201  {object} v1.RAProfile
// @Router  /raprofiles [post]
func (app *v1API) createRAProfile(c echo.Context) error {
	var req v1.RAProfileRequest
	if err := helper.Bind(c, &req); err != nil {
		return err
	}

	profile, err := app.repository.CreateRAProfile(c.Request().Context(), &certmanager.RAProfile{
		Name:           req.Name,
		Enabled:        req.Enabled,
		ComplianceKind: req.ComplianceKind,
	}, req.RuleUUIDs)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, profile)
}

// @Summary list ra profiles
// @Produce json
// @Success 200 {array} v1.RAProfile
// @Router  /raprofiles [get]
func (app *v1API) listRAProfile(c echo.Context) error {
	items, err := app.repository.ListRAProfile(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, items)
}

// @Summary create group
// @Accept  json
// @Produce json
// @Param   body body     v1.GroupRequest true "group"
// @Success 201  {object} v1.Group
// @Router  /groups [post]
func (app *v1API) createGroup(c echo.Context) error {
	var req v1.GroupRequest
	if err := helper.Bind(c, &req); err != nil {
		return err
	}

	group, err := app.repository.CreateGroup(c.Request().Context(), &certmanager.Group{Name: req.Name, Description: req.Description})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, group)
}

// @Summary list groups
// @Produce json
// @Success 200 {array} v1.Group
// @Router  /groups [get]
func (app *v1API) listGroup(c echo.Context) error {
	items, err := app.repository.ListGroup(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, items)
}

// @Summary create compliance rule
// @Accept  json
// @Produce json
// @Param   body body     v1.ComplianceRuleRequest true "rule"
// @Success 201  {object} v1.ComplianceRule
// @Router  /complianceRules [post]
func (app *v1API) createComplianceRule(c echo.Context) error {
	var req v1.ComplianceRuleRequest
	if err := helper.Bind(c, &req); err != nil {
		return err
	}

	rule, err := app.repository.CreateComplianceRule(c.Request().Context(), &certmanager.ComplianceRule{
		ConnectorRuleID: req.ConnectorRuleID,
		Name:            req.Name,
		Description:     req.Description,
		Kind:            req.Kind,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, rule)
}

// @Summary list compliance rules
// @Produce json
// @Success 200 {array} v1.ComplianceRule
// @Router  /complianceRules [get]
func (app *v1API) listComplianceRule(c echo.Context) error {
	items, err := app.repository.ListComplianceRule(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, items)
}
