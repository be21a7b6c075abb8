// Package actions holds the domain operations behind the HTTP handlers.
// Every operation takes the resolved caller identity as an explicit
// parameter (zero means "no identity") instead of reading ambient session
// state, and returns errors as forms.Result values rather than raising
// them across the package boundary.
package actions

import (
	"errors"

	"gorm.io/gorm"
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
