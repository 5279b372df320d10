package parity

import "fmt"

// URITolerance selects how resolved-file URIs are compared
type URITolerance string

const (
	// URIToleranceNormalize compares URIs after scheme, slash and path normalization,
	// so file:/repo/a.jar and file:///repo/a.jar are equal
	URIToleranceNormalize URITolerance = "normalize"

	// URIToleranceStrict compares URIs literally
	URIToleranceStrict URITolerance = "strict"
)

// Options configures which differences are tolerated
type Options struct {
	// IgnoreIdentifiers skips every field typed as a unique identifier
	IgnoreIdentifiers bool

	// IgnoreSettings skips every field holding an embedded settings snapshot
	IgnoreSettings bool

	// ExcludedFields are field names skipped in every marker comparison
	ExcludedFields []string

	// OrderInsensitiveFields are list fields compared as multisets
	OrderInsensitiveFields []string

	URITolerance URITolerance
}

// DefaultOptions returns the tolerances used when nothing is configured
func DefaultOptions() Options {
	return Options{
		IgnoreIdentifiers:      true,
		IgnoreSettings:         true,
		ExcludedFields:         []string{},
		OrderInsensitiveFields: []string{FieldModules},
		URITolerance:           URIToleranceNormalize,
	}
}

// Validate checks the option values
func (o Options) Validate() error {
	switch o.URITolerance {
	case URIToleranceNormalize, URIToleranceStrict:
	case "":
		return fmt.Errorf("uri tolerance must be set")
	default:
		return fmt.Errorf("invalid uri tolerance %q, must be one of: normalize, strict", o.URITolerance)
	}
	return nil
}

func (o Options) isExcluded(name string) bool {
	for _, f := range o.ExcludedFields {
		if f == name {
			return true
		}
	}
	return false
}

func (o Options) isOrderInsensitive(name string) bool {
	for _, f := range o.OrderInsensitiveFields {
		if f == name {
			return true
		}
	}
	return false
}
