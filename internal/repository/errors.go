package repository

import (
	"errors"
	"net/http"

	"github.com/go-kivik/kivik/v4"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

func isCouchNotFound(err error) bool {
	return kivik.HTTPStatus(err) == http.StatusNotFound
}

func isCouchConflict(err error) bool {
	return kivik.HTTPStatus(err) == http.StatusConflict
}
