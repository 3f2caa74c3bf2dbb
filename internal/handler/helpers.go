package handler

import (
	"reflect"
	"strings"

	"github.com/AriBaderkhan/seraj-store/internal/apierror"
	"github.com/AriBaderkhan/seraj-store/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
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

	// report json names in field errors
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and records the error if binding or validation fails; the
// caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		writeError(c, apierror.Validation("", "invalid JSON: "+err.Error(), nil))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields[fieldPath(fe)] = fe.Tag()
			}
		}
		writeError(c, apierror.NewValidation(fields))
		return false
	}
	return true
}

// fieldPath drops the root struct name: "CreateItemRequest.device.imei1" → "device.imei1".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// writeError hands err to middleware.ErrorHandler, which renders the envelope.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		writeError(c, apierror.Validation("", "invalid "+param, map[string]string{param: "uuid"}))
		return uuid.Nil, false
	}
	return id, true
}

// actor is the authenticated user id, or "" when the route is unauthenticated.
func actor(c *gin.Context) string {
	if claims := middleware.GetClaims(c); claims != nil {
		return claims.UserID
	}
	return ""
}
