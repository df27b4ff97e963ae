// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

package errutil

import (
	"fmt"

	"github.com/samber/oops"
)

// Code returns the oops error code of err, or "" when it carries none.
func Code(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code := oopsErr.Code()
	if code == nil {
		return ""
	}
	if s, ok := code.(string); ok {
		return s
	}
	return fmt.Sprint(code)
}

// HasErrorCode reports whether err is an oops error with the given code.
func HasErrorCode(err error, code string) bool {
	return Code(err) == code
}
