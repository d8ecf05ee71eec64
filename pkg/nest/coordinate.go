// SPDX-License-Identifier: MPL-2.0

package nest

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCoordinate is the sentinel error wrapped by InvalidCoordinateError.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

type (
	// Coordinate is the group, name and version triple identifying a dependency.
	// It is the identity key used to deduplicate project and external dependencies.
	Coordinate struct {
		Group   string `json:"group"`
		Name    string `json:"name"`
		Version string `json:"version"`
	}

	// InvalidCoordinateError is returned when a coordinate cannot be parsed or has blank fields.
	// It wraps ErrInvalidCoordinate for errors.Is() compatibility.
	InvalidCoordinateError struct {
		Value  string
		Reason string
	}
)

// ParseCoordinate parses a "group:name:version" string.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Coordinate{}, &InvalidCoordinateError{Value: s, Reason: "expected group:name:version"}
	}

	c := Coordinate{Group: parts[0], Name: parts[1], Version: parts[2]}
	if valid, errs := c.IsValid(); !valid {
		return Coordinate{}, errs[0]
	}
	return c, nil
}

// String returns the "group:name:version" form.
func (c Coordinate) String() string {
	return c.Group + ":" + c.Name + ":" + c.Version
}

// IsValid returns whether every field of the coordinate is non-blank.
func (c Coordinate) IsValid() (bool, []error) {
	var errs []error
	for _, field := range []struct{ name, value string }{
		{"group", c.Group},
		{"name", c.Name},
		{"version", c.Version},
	} {
		if strings.TrimSpace(field.value) == "" {
			errs = append(errs, &InvalidCoordinateError{Value: c.String(), Reason: field.name + " must not be empty"})
		}
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

// ModID returns the descriptor id generated for this coordinate: group and name joined by
// an underscore, every dot replaced by an underscore, lower-cased.
func (c Coordinate) ModID() string {
	return strings.ToLower(strings.ReplaceAll(c.Group+"_"+c.Name, ".", "_"))
}

// Error implements the error interface for InvalidCoordinateError.
func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid coordinate %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidCoordinate for errors.Is() compatibility.
func (e *InvalidCoordinateError) Unwrap() error { return ErrInvalidCoordinate }
