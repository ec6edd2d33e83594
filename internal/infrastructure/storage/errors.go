package storage

import "errors"

var errEmptyPredicate = errors.New("refusing to delete with an empty predicate")
