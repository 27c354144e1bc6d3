package models

import "fmt"

// BookingStatus represents the status of a ride booking
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// PaymentStatus represents the payment status carried on a booking
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// RentalStatus represents the status of a rental request
type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "pending"
	RentalStatusApproved  RentalStatus = "approved"
	RentalStatusRejected  RentalStatus = "rejected"
	RentalStatusActive    RentalStatus = "active"
	RentalStatusCompleted RentalStatus = "completed"
	RentalStatusCancelled RentalStatus = "cancelled"
)

// TourBookingStatus represents the status of a tour package booking
type TourBookingStatus string

const (
	TourStatusPending   TourBookingStatus = "pending"
	TourStatusConfirmed TourBookingStatus = "confirmed"
	TourStatusRejected  TourBookingStatus = "rejected"
	TourStatusCancelled TourBookingStatus = "cancelled"
	TourStatusCompleted TourBookingStatus = "completed"
)

// ContractStatus represents the status of a vehicle provider contract
type ContractStatus string

const (
	ContractStatusPending     ContractStatus = "pending"
	ContractStatusUnderReview ContractStatus = "under_review"
	ContractStatusApproved    ContractStatus = "approved"
	ContractStatusActive      ContractStatus = "active"
	ContractStatusSuspended   ContractStatus = "suspended"
	ContractStatusTerminated  ContractStatus = "terminated"
	ContractStatusExpired     ContractStatus = "expired"
)

// SettlementStatus represents the status of a payment record
type SettlementStatus string

const (
	SettlementPending   SettlementStatus = "pending"
	SettlementCompleted SettlementStatus = "completed"
	SettlementFailed    SettlementStatus = "failed"
	SettlementRefunded  SettlementStatus = "refunded"
)

// transitionTable lists, per status, the statuses it may move to.
// A status listed as its own target may be re-applied idempotently.
type transitionTable[S ~string] map[S][]S

func (t transitionTable[S]) allows(from, to S) bool {
	for _, candidate := range t[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

func (t transitionTable[S]) known(s S) bool {
	_, ok := t[s]
	return ok
}

func (t transitionTable[S]) validate(field string, from, to S) error {
	if !t.known(to) {
		return InvalidTransition(field, fmt.Sprintf("unsupported status %q", to))
	}
	if !t.allows(from, to) {
		return InvalidTransition(field, fmt.Sprintf("cannot move from %s to %s", from, to))
	}
	return nil
}

var bookingTransitions = transitionTable[BookingStatus]{
	BookingStatusPending:    {BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:  {BookingStatusConfirmed, BookingStatusInProgress, BookingStatusCancelled},
	BookingStatusInProgress: {BookingStatusInProgress, BookingStatusCompleted},
	BookingStatusCompleted:  {},
	BookingStatusCancelled:  {},
}

var rentalTransitions = transitionTable[RentalStatus]{
	RentalStatusPending:   {RentalStatusPending, RentalStatusApproved, RentalStatusRejected, RentalStatusCancelled},
	RentalStatusApproved:  {RentalStatusApproved, RentalStatusActive, RentalStatusRejected, RentalStatusCancelled},
	RentalStatusActive:    {RentalStatusActive, RentalStatusCompleted},
	RentalStatusRejected:  {},
	RentalStatusCompleted: {},
	RentalStatusCancelled: {},
}

var tourTransitions = transitionTable[TourBookingStatus]{
	TourStatusPending:   {TourStatusPending, TourStatusConfirmed, TourStatusRejected, TourStatusCancelled},
	TourStatusConfirmed: {TourStatusConfirmed, TourStatusCompleted},
	TourStatusRejected:  {},
	TourStatusCancelled: {},
	TourStatusCompleted: {},
}

var contractTransitions = transitionTable[ContractStatus]{
	ContractStatusPending:     {ContractStatusPending, ContractStatusUnderReview},
	ContractStatusUnderReview: {ContractStatusUnderReview, ContractStatusApproved},
	ContractStatusApproved:    {ContractStatusApproved, ContractStatusActive},
	ContractStatusActive:      {ContractStatusActive, ContractStatusSuspended, ContractStatusTerminated, ContractStatusExpired},
	ContractStatusSuspended:   {ContractStatusSuspended, ContractStatusActive, ContractStatusTerminated},
	ContractStatusTerminated:  {},
	ContractStatusExpired:     {},
}

var settlementTransitions = transitionTable[SettlementStatus]{
	SettlementPending:   {SettlementPending, SettlementCompleted, SettlementFailed},
	SettlementCompleted: {SettlementCompleted, SettlementRefunded},
	SettlementFailed:    {SettlementFailed, SettlementPending},
	SettlementRefunded:  {},
}

// ValidateBookingTransition checks a booking status change against the transition table
func ValidateBookingTransition(from, to BookingStatus) error {
	return bookingTransitions.validate("status", from, to)
}

// ValidateRentalTransition checks a rental status change against the transition table
func ValidateRentalTransition(from, to RentalStatus) error {
	return rentalTransitions.validate("status", from, to)
}

// ValidateTourTransition checks a tour booking status change against the transition table
func ValidateTourTransition(from, to TourBookingStatus) error {
	return tourTransitions.validate("status", from, to)
}

// ValidateContractTransition checks a provider contract status change against the transition table
func ValidateContractTransition(from, to ContractStatus) error {
	return contractTransitions.validate("status", from, to)
}

// ValidateSettlementTransition checks a payment status change against the transition table
func ValidateSettlementTransition(from, to SettlementStatus) error {
	return settlementTransitions.validate("status", from, to)
}

// ParseBookingStatus converts a raw status string, rejecting unknown values
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !bookingTransitions.known(status) {
		return "", InvalidTransition("status", fmt.Sprintf("unsupported status %q", s))
	}
	return status, nil
}

// ParseRentalStatus converts a raw status string, rejecting unknown values
func ParseRentalStatus(s string) (RentalStatus, error) {
	status := RentalStatus(s)
	if !rentalTransitions.known(status) {
		return "", InvalidTransition("status", fmt.Sprintf("unsupported status %q", s))
	}
	return status, nil
}

// ParseTourBookingStatus converts a raw status string, rejecting unknown values
func ParseTourBookingStatus(s string) (TourBookingStatus, error) {
	status := TourBookingStatus(s)
	if !tourTransitions.known(status) {
		return "", InvalidTransition("status", fmt.Sprintf("unsupported status %q", s))
	}
	return status, nil
}

// ParseContractStatus converts a raw status string, rejecting unknown values
func ParseContractStatus(s string) (ContractStatus, error) {
	status := ContractStatus(s)
	if !contractTransitions.known(status) {
		return "", InvalidTransition("status", fmt.Sprintf("unsupported status %q", s))
	}
	return status, nil
}

// ParseSettlementStatus converts a raw status string, rejecting unknown values
func ParseSettlementStatus(s string) (SettlementStatus, error) {
	status := SettlementStatus(s)
	if !settlementTransitions.known(status) {
		return "", InvalidTransition("status", fmt.Sprintf("unsupported status %q", s))
	}
	return status, nil
}

// HoldsVehicle reports whether a rental in this status occupies its vehicle
func (s RentalStatus) HoldsVehicle() bool {
	return s == RentalStatusApproved || s == RentalStatusActive
}

// ReleasesVehicle reports whether entering this status frees the vehicle
func (s RentalStatus) ReleasesVehicle() bool {
	return s == RentalStatusCompleted || s == RentalStatusCancelled || s == RentalStatusRejected
}

// BookingPaymentStatus maps a payment record status onto the booking's payment status
func (s SettlementStatus) BookingPaymentStatus() PaymentStatus {
	switch s {
	case SettlementCompleted:
		return PaymentStatusPaid
	case SettlementFailed:
		return PaymentStatusFailed
	default:
		return PaymentStatusPending
	}
}
