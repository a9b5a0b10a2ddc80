package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"fleetopt/internal/geo"
	"fleetopt/internal/model"
	"fleetopt/internal/opt"
)

func newValidator() *validator.Validate {
	v := validator.New()
	// report JSON field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// checkStruct runs the struct tags of v and returns one message per failed field.
func (s *Server) checkStruct(v any) []string {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, formatFieldError(fe))
	}
	return out
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min", "max":
		word := "at least"
		if fe.Tag() == "max" {
			word = "at most"
		}
		if fe.Kind() == reflect.Slice {
			return field + " must have " + word + " " + fe.Param() + " entries"
		}
		return field + " must be " + word + " " + fe.Param()
	case "gte":
		return field + " must be >= " + fe.Param()
	case "lte":
		return field + " must be <= " + fe.Param()
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "latitude":
		return field + " must be a latitude in [-90, 90]"
	case "longitude":
		return field + " must be a longitude in [-180, 180]"
	case "datetime":
		return field + " must be a date formatted " + fe.Param()
	case "url":
		return field + " must be a URL"
	default:
		return field + " failed " + fe.Tag() + " validation"
	}
}

// validateOptimizeRequest checks the rules struct tags cannot express.
func validateOptimizeRequest(req model.OptimizeRequest) []string {
	var errs []string
	if len(req.Capacities) > 0 && req.VehicleCapacity > 0 {
		errs = append(errs, "capacities and vehicleCapacity are mutually exclusive")
	}
	if len(req.Capacities) > 0 && len(req.Capacities) != req.Vehicles {
		errs = append(errs, fmt.Sprintf("capacities has %d entries, want one per vehicle (%d)", len(req.Capacities), req.Vehicles))
	}
	if _, err := geo.ParseMethod(req.Method); req.Method != "" && err != nil {
		errs = append(errs, "method: "+err.Error())
	}
	if _, err := opt.ParseMetaheuristic(req.LocalSearch); err != nil {
		errs = append(errs, "localSearch: "+err.Error())
	}
	return errs
}
