package domain

import "errors"

var (
	ErrNotObject     = errors.New("value is not a JSON object")
	ErrMissingField  = errors.New("missing field")
	ErrNotRecordList = errors.New("category is not a list of records")
)
