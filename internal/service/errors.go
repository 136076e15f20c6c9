package service

import "errors"

var (
	// ErrInvalidTransition is returned when a phase precondition fails.
	ErrInvalidTransition = errors.New("invalid phase transition")

	// ErrSessionBusy is returned when the booking's distributed lock is
	// held elsewhere; the operation is safe to retry.
	ErrSessionBusy = errors.New("session busy")

	// ErrRoomInactive is returned when sending to a missing or
	// deactivated chat room.
	ErrRoomInactive = errors.New("chat room inactive")

	// ErrUnauthorizedSender is returned when the sender identity does not
	// match the room participant for the claimed sender type.
	ErrUnauthorizedSender = errors.New("sender is not a room participant")

	// ErrUnauthorizedCaller is returned when the caller is not a party to
	// the booking.
	ErrUnauthorizedCaller = errors.New("caller is not a party to this booking")

	// ErrDuplicateRoom is returned when a chat room already exists for
	// the booking.
	ErrDuplicateRoom = errors.New("chat room already exists for booking")

	// ErrDuplicateEntry is returned when a ledger entry already exists
	// for the booking.
	ErrDuplicateEntry = errors.New("payment ledger entry already exists for booking")

	// ErrMethodMismatch is returned when confirming via a channel the
	// entry's payment method does not support.
	ErrMethodMismatch = errors.New("payment method does not support this confirmation")

	// ErrPolicyViolation is returned when finalizing payment before the
	// ride is completed.
	ErrPolicyViolation = errors.New("payment cannot be finalized before ride completion")

	// ErrAlreadyFinalized is returned when a ledger entry has already
	// reached a terminal status.
	ErrAlreadyFinalized = errors.New("payment ledger entry already finalized")

	// ErrInvalidBookingID is returned when booking ID is empty.
	ErrInvalidBookingID = errors.New("invalid booking id")

	// ErrInvalidStudentID is returned when student ID is empty.
	ErrInvalidStudentID = errors.New("invalid student id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidMessageID is returned when message ID is empty.
	ErrInvalidMessageID = errors.New("invalid message id")

	// ErrEmptyMessage is returned when message text is empty.
	ErrEmptyMessage = errors.New("message text is empty")

	// ErrInvalidSenderType is returned when the sender type is neither
	// student nor driver.
	ErrInvalidSenderType = errors.New("invalid sender type")

	// ErrInvalidLocation is returned when pickup or destination
	// coordinates are invalid.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidPaymentMethod is returned when a payment method string is
	// not one of the accepted values.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)
