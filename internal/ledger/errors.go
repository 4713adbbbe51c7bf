package ledger

import "errors"

// Business rule rejections. Each one leaves the ledger exactly as it was;
// the caller records the outcome and moves on to the next transaction.
var (
	ErrAccountLocked              = errors.New("account is locked")
	ErrAccountNotFound            = errors.New("account not found")
	ErrAmountMustBePositive       = errors.New("amount must be positive")
	ErrDuplicateTransaction       = errors.New("duplicate transaction")
	ErrInsufficientFunds          = errors.New("insufficient funds")
	ErrInvalidTransaction         = errors.New("invalid transaction")
	ErrTransactionAlreadyDisputed = errors.New("transaction already disputed")
	ErrTransactionNotDisputed     = errors.New("transaction not disputed")
	ErrTransactionNotFound        = errors.New("transaction not found")
	ErrTransactionClientMismatch  = errors.New("transaction belongs to a different client")
)

var rejectionCodes = map[error]string{
	ErrAccountLocked:              "account_locked",
	ErrAccountNotFound:            "account_not_found",
	ErrAmountMustBePositive:       "amount_must_be_positive",
	ErrDuplicateTransaction:       "duplicate_transaction",
	ErrInsufficientFunds:          "insufficient_funds",
	ErrInvalidTransaction:         "invalid_transaction",
	ErrTransactionAlreadyDisputed: "transaction_already_disputed",
	ErrTransactionNotDisputed:     "transaction_not_disputed",
	ErrTransactionNotFound:        "transaction_not_found",
	ErrTransactionClientMismatch:  "transaction_client_mismatch",
}

// Reason returns the stable code for a business rule rejection, used in
// run statistics, audit entries, and API responses. It returns "" when
// err is not one of the rejections above.
func Reason(err error) string {
	for sentinel, code := range rejectionCodes {
		if errors.Is(err, sentinel) {
			return code
		}
	}

	return ""
}

// IsRejection reports whether err is a business rule rejection rather
// than an infrastructure failure.
func IsRejection(err error) bool {
	return Reason(err) != ""
}
