package types

import "github.com/pkg/errors"

var (
	ErrParse           = errors.New("fail to parse certificate")
	ErrUnsupportedType = errors.New("unsupported certificate type")
	ErrAlreadyExists   = errors.New("already exists")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrConnector       = errors.New("compliance connector failed")
	ErrChainFetch      = errors.New("fail to fetch certificate chain")
)
