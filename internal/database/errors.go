package database

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassTransient
	ErrorClassDeadlock
	ErrorClassSerialization
)

func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassPermanent
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001":
			return ErrorClassSerialization
		case "40P01":
			return ErrorClassDeadlock
		case "55P03":
			return ErrorClassTransient
		case "23505", "23503", "23502", "23514":
			return ErrorClassPermanent
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrorClassPermanent
	}

	return ErrorClassPermanent
}

func IsRetryable(err error) bool {
	class := ClassifyError(err)
	return class == ErrorClassTransient ||
		class == ErrorClassDeadlock ||
		class == ErrorClassSerialization
}

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrSizeNotFound         = errors.New("product size not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrSlipNotFound         = errors.New("payment slip not found")
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrCartItemNotFound     = errors.New("cart item not found")
	ErrCartEmpty            = errors.New("cart is empty")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrSlipExists           = errors.New("payment slip already submitted")
	ErrSlipAlreadyDecided   = errors.New("payment slip already decided")
	ErrLockTimeout          = errors.New("lock timeout")
)
