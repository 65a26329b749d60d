// Package uischema models UI schema trees (layouts, controls, labels), loads
// them from JSON or YAML documents and generates a default tree from a data
// schema when none is supplied.
package uischema
