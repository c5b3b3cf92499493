package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/cluso-pathfinder/pkg/geom"
)

// ErrInvalidRequest is matched by every request validation failure.
var ErrInvalidRequest = errors.New("invalid request")

// validate is a singleton validator instance
var validate *validator.Validate

// DefaultNearest is the k used when a nearest lookup omits it.
const DefaultNearest = 5

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report json names so messages match what clients sent.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	validate.RegisterValidation("nodeid", validNodeID)
	validate.RegisterValidation("finite", validFinite)
}

// validNodeID rejects ids that cannot round-trip through a URL path
// segment: slashes, whitespace and control characters.
func validNodeID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	if strings.TrimSpace(id) == "" {
		return false
	}
	for _, r := range id {
		if r == '/' || unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}

func validFinite(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() == reflect.Ptr {
		if f.IsNil() {
			return true
		}
		f = f.Elem()
	}
	v := f.Float()
	return !math.IsNaN(v) && !math.IsInf(v, 0) && math.Abs(v) <= geom.MaxCoordinate
}

// NodeRequest registers a node. X and Y are pointers so a missing
// coordinate is distinguishable from zero.
type NodeRequest struct {
	ID string   `json:"node_id" validate:"required,max=128,nodeid"`
	X  *float64 `json:"x" validate:"required,finite"`
	Y  *float64 `json:"y" validate:"required,finite"`
}

// EdgeRequest links two existing nodes.
type EdgeRequest struct {
	Node1 string `json:"node1" validate:"required,max=128,nodeid"`
	Node2 string `json:"node2" validate:"required,max=128,nodeid"`
}

// PathRequest asks for a path between two registered nodes.
type PathRequest struct {
	Start string `json:"start" validate:"required,max=128,nodeid"`
	Goal  string `json:"goal" validate:"required,max=128,nodeid"`
}

// GridRequest carries a Treasure Island grid. Shape and marker checks are
// left to the grid package so they surface as grid errors.
type GridRequest struct {
	Island   [][]any `json:"island" validate:"required,max=1024,dive,max=1024"`
	Diagonal bool    `json:"diagonal"`
}

// NearestRequest asks for the k registered nodes closest to (x, y).
type NearestRequest struct {
	X *float64 `json:"x" validate:"required,finite"`
	Y *float64 `json:"y" validate:"required,finite"`
	K int      `json:"k" validate:"min=1,max=100"`
}

// ValidateNodeRequest validates a node registration request
func ValidateNodeRequest(req *NodeRequest) error {
	return validateStruct("node request", req)
}

// ValidateEdgeRequest validates an edge registration request
func ValidateEdgeRequest(req *EdgeRequest) error {
	return validateStruct("edge request", req)
}

// ValidatePathRequest validates a graph path request
func ValidatePathRequest(req *PathRequest) error {
	return validateStruct("path request", req)
}

// ValidateGridRequest validates a grid path request
func ValidateGridRequest(req *GridRequest) error {
	return validateStruct("grid request", req)
}

// ValidateNearestRequest validates a nearest-node lookup
func ValidateNearestRequest(req *NearestRequest) error {
	return validateStruct("nearest request", req)
}

func validateStruct[T any](what string, req *T) error {
	if req == nil {
		return fmt.Errorf("%w: %s cannot be nil", ErrInvalidRequest, what)
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts the first validator error to a
// client-facing message wrapping ErrInvalidRequest
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	e := validationErrs[0]
	field := e.Field()
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Errorf("%w: %s: field is required", ErrInvalidRequest, field)
	case "min":
		return fmt.Errorf("%w: %s: must be at least %s", ErrInvalidRequest, field, param)
	case "max":
		return fmt.Errorf("%w: %s: must not exceed %s", ErrInvalidRequest, field, param)
	case "nodeid":
		return fmt.Errorf("%w: %s: must be non-empty without slashes or whitespace", ErrInvalidRequest, field)
	case "finite":
		return fmt.Errorf("%w: %s: must be a finite number within ±%g", ErrInvalidRequest, field, geom.MaxCoordinate)
	default:
		return fmt.Errorf("%w: %s: validation failed (%s)", ErrInvalidRequest, field, e.Tag())
	}
}
