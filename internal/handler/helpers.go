package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/BAHUBALISID/smj/internal/apierror"
	"github.com/BAHUBALISID/smj/internal/middleware"
	"github.com/BAHUBALISID/smj/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Report fields by their wire names: items[0].gross_weight
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
}

// fieldName drops the root struct from a validator namespace.
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func validationResponse(err error) (*apierror.APIError, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldName(fe)] = fe.Tag()
	}
	return apierror.NewValidation(fields), true
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		apierror.JSON(c, http.StatusBadRequest, apierror.New(apierror.CodeBadRequest, "invalid JSON: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

// bindQuery is bindAndValidate for query strings.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		apierror.JSON(c, http.StatusBadRequest, apierror.New(apierror.CodeBadRequest, "invalid query: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

func runValidation(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		if resp, ok := validationResponse(err); ok {
			apierror.JSON(c, http.StatusUnprocessableEntity, resp)
		} else {
			apierror.JSON(c, http.StatusBadRequest, apierror.New(apierror.CodeBadRequest, err.Error()))
		}
		return false
	}
	return true
}

// actorFrom turns the JWT claims into the service actor.
func actorFrom(c *gin.Context) service.Actor {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return service.Actor{}
	}
	return service.Actor{ID: claims.ActorID(), Role: claims.Role}
}

// respondError maps the service error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		apierror.JSON(c, http.StatusUnprocessableEntity, apierror.NewValidation(verr.Fields))
	case errors.Is(err, service.ErrRateNotFound), errors.Is(err, service.ErrCyclicRateDerivation):
		apierror.JSON(c, http.StatusUnprocessableEntity, apierror.New(apierror.CodeRateUnavailable, err.Error()))
	case errors.Is(err, service.ErrRateExists):
		apierror.JSON(c, http.StatusConflict, apierror.New(apierror.CodeRateExists, err.Error()))
	case errors.Is(err, service.ErrInvoiceNotFound), errors.Is(err, service.ErrExchangeNotFound):
		apierror.JSON(c, http.StatusNotFound, apierror.New(apierror.CodeNotFound, err.Error()))
	case errors.Is(err, service.ErrDuplicateDocumentNumber):
		c.Header("Retry-After", "1")
		apierror.JSON(c, http.StatusServiceUnavailable, apierror.New(apierror.CodeNumberingBusy, "document numbering is busy, retry the request"))
	default:
		// logged by middleware.ErrorHandler
		_ = c.Error(err)
		apierror.JSON(c, http.StatusInternalServerError, apierror.Internal())
	}
}
