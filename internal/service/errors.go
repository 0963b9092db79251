package service

import (
	"errors"
	"fmt"
)

// Error categories. Handlers map them to status codes with errors.Is.
var (
	ErrValidation    = errors.New("validation failed")
	ErrParse         = errors.New("could not read document")
	ErrAuthorization = errors.New("not authorized")
	ErrNotFound      = errors.New("not found")
)

var (
	ErrFileRequired     = fmt.Errorf("%w: file is required", ErrValidation)
	ErrFilesRequired    = fmt.Errorf("%w: at least one file is required", ErrValidation)
	ErrIDRequired       = fmt.Errorf("%w: id is required", ErrValidation)
	ErrIdentityRequired = fmt.Errorf("%w: specify ?user=username or the X-User header", ErrAuthorization)
	ErrForbidden        = fmt.Errorf("%w: you can only delete your own uploads", ErrAuthorization)
	ErrRecordNotFound   = fmt.Errorf("%w: tariff record", ErrNotFound)
)
