package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/whitekid/goxp/log"

	"certhub/api/endpoints"
	"certhub/certmanager"
	"certhub/client/common"
	"certhub/pkg/helper"
	"certhub/pkg/helper/gormx"
	"certhub/pkg/worker"
)

// @title    certhub
// @version  v1
// @BasePath /v1
type v1API struct {
	repository certmanager.Interface
}

func New(repo certmanager.Interface) *v1API {
	return &v1API{
		repository: repo,
	}
}

var _ endpoints.Endpoint = (*v1API)(nil)

func (app *v1API) PathAndName() (string, string) { return "/v1", "v1 handler" }

type Context struct {
	echo.Context

	// extracted information from path parameters
	certificateID string
	principalID   string
}

func customContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc, ok := c.(*Context)
			if !ok {
				cc = &Context{Context: c}
			}

			return next(cc)
		}
	}
}

func (app *v1API) Route(e *echo.Group) {
	e.Use(customContext(), handleError)

	certificateID := helper.ExtractParam("certificate_id", func(c echo.Context, val string) { c.(*Context).certificateID = val })
	principalID := helper.ExtractParam("principal_id", func(c echo.Context, val string) { c.(*Context).principalID = val })

	e.POST("/certificates", app.uploadCertificate)
	e.POST("/certificates/import", app.importCertificate)
	e.POST("/certificates/list", app.listCertificate)
	e.GET("/certificates/search", app.searchableFields)
	e.POST("/certificates/bulk/update", app.bulkUpdate)
	e.POST("/certificates/bulk/delete", app.bulkDelete)
	e.POST("/certificates/compliance", app.checkCompliance)
	e.POST("/certificates/issuers/sweep", app.sweepIssuers)

	e.GET("/certificates/:certificate_id", app.getCertificate, certificateID)
	e.PATCH("/certificates/:certificate_id", app.updateCertificate, certificateID)
	e.DELETE("/certificates/:certificate_id", app.deleteCertificate, certificateID)
	e.GET("/certificates/:certificate_id/history", app.certificateHistory, certificateID)
	e.POST("/certificates/:certificate_id/revoke", app.revokeCertificate, certificateID)
	e.POST("/certificates/:certificate_id/chain", app.downloadChain, certificateID)
	e.GET("/certificates/:certificate_id/locations", app.listLocations, certificateID)
	e.POST("/certificates/:certificate_id/locations", app.addLocation, certificateID)
	e.DELETE("/certificates/:certificate_id/locations", app.removeLocation, certificateID)

	e.POST("/principals", app.createPrincipal)
	e.GET("/principals", app.listPrincipals)
	e.PATCH("/principals/:principal_id", app.updatePrincipal, principalID)

	e.POST("/raprofiles", app.createRAProfile)
	e.GET("/raprofiles", app.listRAProfile)
	e.POST("/groups", app.createGroup)
	e.GET("/groups", app.listGroup)
	e.POST("/complianceRules", app.createComplianceRule)
	e.GET("/complianceRules", app.listComplianceRule)
}

// handleError write error as problem detail
func handleError(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		if err == nil {
			return nil
		}

		problem := errToProblem(err)
		problem.Instance = c.Request().URL.Path
		if problem.Status >= http.StatusInternalServerError {
			log.Errorf("%s %s: %+v", c.Request().Method, c.Request().URL.Path, err)
		}

		if c.Response().Committed {
			return nil
		}

		c.Response().Header().Set(echo.HeaderContentType, common.MIMEProblemDetail)
		return c.JSON(problem.Status, problem)
	}
}

func errToProblem(err error) *common.ProblemDetail {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return &common.ProblemDetail{
			Type:   problemType(he.Code),
			Title:  http.StatusText(he.Code),
			Status: he.Code,
			Detail: fmtMessage(he.Message),
		}
	}

	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, certmanager.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, certmanager.ErrAlreadyExists), errors.Is(err, certmanager.ErrUniqueConstraintFailed):
		code = http.StatusConflict
	case errors.Is(err, certmanager.ErrValidation),
		errors.Is(err, certmanager.ErrParse),
		errors.Is(err, certmanager.ErrUnsupportedType),
		errors.Is(err, gormx.ErrForeignKeyConstraintFailed),
		helper.IsValidationError(err):
		code = http.StatusBadRequest
	case errors.Is(err, certmanager.ErrConnector):
		code = http.StatusBadGateway
	case errors.Is(err, worker.ErrQueueFull), errors.Is(err, worker.ErrClosed):
		code = http.StatusServiceUnavailable
	default:
		log.Debugf("unhandled err=%T, %v", err, err)
	}

	return &common.ProblemDetail{
		Type:   problemType(code),
		Title:  http.StatusText(code),
		Status: code,
		Detail: err.Error(),
	}
}

func problemType(code int) string {
	switch code {
	case http.StatusNotFound:
		return common.ProblemNotFound
	case http.StatusConflict:
		return common.ProblemConflict
	case http.StatusBadGateway:
		return common.ProblemConnector
	case http.StatusServiceUnavailable:
		return common.ProblemQueueFull
	}

	if code >= http.StatusBadRequest && code < http.StatusInternalServerError {
		return common.ProblemBadRequest
	}
	return common.ProblemInternalError
}

func fmtMessage(msg interface{}) string {
	if s, ok := msg.(string); ok {
		return s
	}
	if err, ok := msg.(error); ok {
		return err.Error()
	}
	return ""
}
