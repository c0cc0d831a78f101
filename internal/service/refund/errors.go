package refund

import "errors"

var (
	// ErrRefundExceedsPaid возвращается при попытке вернуть больше, чем оплачено
	ErrRefundExceedsPaid = errors.New("refund: amount exceeds refundable amount")

	// ErrInvalidAmount возвращается при отрицательной сумме возврата
	ErrInvalidAmount = errors.New("refund: amount must not be negative")

	// ErrNegativeAmountPaid возвращается при отрицательной оплаченной сумме -
	// это нарушение инварианта данных, а не бизнес-исход
	ErrNegativeAmountPaid = errors.New("refund: amount paid must not be negative")
)
