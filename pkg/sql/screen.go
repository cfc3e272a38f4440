// Package sql screens user-submitted query text before it is executed on a
// warehouse connection or forwarded for analysis.
package sql

import (
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"
)

// Statement verbs allowed through the query console. Everything else is
// rejected before reaching the warehouse.
var readOnlyVerbs = []string{"SELECT", "WITH", "SHOW", "DESCRIBE", "DESC", "EXPLAIN"}

// IsReadOnly reports whether the statement starts with a read-only verb.
// Returns the detected verb for error reporting.
func IsReadOnly(query string) (bool, string) {
	trimmed := strings.TrimSpace(query)

	// Strip leading line comments
	for strings.HasPrefix(trimmed, "--") {
		idx := strings.IndexByte(trimmed, '\n')
		if idx < 0 {
			return false, ""
		}
		trimmed = strings.TrimSpace(trimmed[idx+1:])
	}

	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return false, ""
	}

	verb := strings.ToUpper(fields[0])
	for _, allowed := range readOnlyVerbs {
		if verb == allowed {
			return true, verb
		}
	}
	return false, verb
}

// InjectionCheckResult contains the result of an injection check on a
// parameter value.
type InjectionCheckResult struct {
	IsSQLi      bool   // True if SQL injection pattern detected
	Fingerprint string // libinjection fingerprint of the detected pattern
	ParamName   string // Name of the parameter that failed the check
	ParamValue  any    // The value that was checked
}

// CheckParameterForInjection uses libinjection to detect SQL injection
// patterns in a parameter value.
//
// Only string values are checked - numbers, booleans, and other types cannot
// contain SQL injection patterns and will return nil (no injection detected).
func CheckParameterForInjection(paramName string, value any) *InjectionCheckResult {
	strValue, ok := value.(string)
	if !ok {
		return nil
	}

	isSQLi, fingerprint := libinjection.IsSQLi(strValue)
	if isSQLi {
		return &InjectionCheckResult{
			IsSQLi:      true,
			Fingerprint: string(fingerprint),
			ParamName:   paramName,
			ParamValue:  value,
		}
	}

	return nil
}

// CheckAllParameters validates all parameter values for SQL injection
// attempts. Returns one result per parameter that failed the check; empty
// when all parameters are clean.
func CheckAllParameters(params map[string]any) []*InjectionCheckResult {
	var results []*InjectionCheckResult
	for name, value := range params {
		if result := CheckParameterForInjection(name, value); result != nil {
			results = append(results, result)
		}
	}
	return results
}
