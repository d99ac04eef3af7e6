package model

import (
	"errors"
	"fmt"
)

// ErrInvalidEnum is returned when a categorical value is outside its allowed set.
var ErrInvalidEnum = errors.New("invalid enumeration value")

// AbuseType labels the behavioral archetype a record was generated from.
type AbuseType string

// Abuse type constants.
const (
	AbuseLegitimate              AbuseType = "legitimate"
	AbuseSuspiciousButLegitimate AbuseType = "suspicious_but_legitimate"
	AbuseFakeAccount             AbuseType = "fake_account"
	AbuseAccountTakeover         AbuseType = "account_takeover"
	AbusePaymentFraud            AbuseType = "payment_fraud"
)

// Archetypes lists every abuse type in composition order. The last entry absorbs
// rounding remainders when a dataset is allocated.
var Archetypes = []AbuseType{
	AbuseLegitimate,
	AbuseSuspiciousButLegitimate,
	AbuseFakeAccount,
	AbuseAccountTakeover,
	AbusePaymentFraud,
}

// IsAbuse reports whether the abuse type is a fraud class.
func (a AbuseType) IsAbuse() bool {
	return a != AbuseLegitimate && a != AbuseSuspiciousButLegitimate
}

// Tiered reports whether records of this type carry a difficulty tier.
func (a AbuseType) Tiered() bool {
	return a.IsAbuse()
}

// Valid reports whether a is a known abuse type.
func (a AbuseType) Valid() bool {
	switch a {
	case AbuseLegitimate, AbuseSuspiciousButLegitimate, AbuseFakeAccount,
		AbuseAccountTakeover, AbusePaymentFraud:
		return true
	}
	return false
}

// DifficultyTier controls how separable a fraud record is from legitimate behavior.
type DifficultyTier string

// Difficulty tier constants.
const (
	TierEasy   DifficultyTier = "easy"
	TierMedium DifficultyTier = "medium"
	TierHard   DifficultyTier = "hard"
	TierNA     DifficultyTier = "n/a"
)

// Tiers lists the fraud difficulty tiers from most to least separable.
var Tiers = []DifficultyTier{TierEasy, TierMedium, TierHard}

// Valid reports whether t is a known tier.
func (t DifficultyTier) Valid() bool {
	switch t {
	case TierEasy, TierMedium, TierHard, TierNA:
		return true
	}
	return false
}

// DeviceType is the client device class.
type DeviceType string

// Device type constants.
const (
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
)

// DeviceTypes lists all device types.
var DeviceTypes = []DeviceType{DeviceDesktop, DeviceMobile, DeviceTablet}

// PaymentMethod is the instrument used for the order.
type PaymentMethod string

// Payment method constants.
const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentDebitCard  PaymentMethod = "debit_card"
	PaymentPayPal     PaymentMethod = "paypal"
	PaymentCrypto     PaymentMethod = "crypto"
)

// PaymentMethods lists all payment methods.
var PaymentMethods = []PaymentMethod{PaymentCreditCard, PaymentDebitCard, PaymentPayPal, PaymentCrypto}

// CVVResult is the card-verification-value check outcome.
type CVVResult string

// CVV result constants.
const (
	CVVPass       CVVResult = "pass"
	CVVFail       CVVResult = "fail"
	CVVNotChecked CVVResult = "not_checked"
)

// CVVResults lists all CVV outcomes.
var CVVResults = []CVVResult{CVVPass, CVVFail, CVVNotChecked}

// AVSResult is the address-verification-system outcome.
type AVSResult string

// AVS result constants.
const (
	AVSFullMatch    AVSResult = "full_match"
	AVSPartialMatch AVSResult = "partial_match"
	AVSNoMatch      AVSResult = "no_match"
)

// AVSResults lists all AVS outcomes.
var AVSResults = []AVSResult{AVSFullMatch, AVSPartialMatch, AVSNoMatch}

// ProcessorResponse is the payment processor's authorization outcome.
type ProcessorResponse string

// Processor response constants.
const (
	ProcessorApproved       ProcessorResponse = "approved"
	ProcessorDeclined       ProcessorResponse = "declined"
	ProcessorSuspectedFraud ProcessorResponse = "suspected_fraud"
)

// ProcessorResponses lists all processor responses.
var ProcessorResponses = []ProcessorResponse{ProcessorApproved, ProcessorDeclined, ProcessorSuspectedFraud}

func parseEnum[T ~string](field, value string, allowed []T) (T, error) {
	for _, a := range allowed {
		if string(a) == value {
			return a, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: %s=%q", ErrInvalidEnum, field, value)
}

// ParseAbuseType parses an abuse_type value.
func ParseAbuseType(s string) (AbuseType, error) {
	return parseEnum("abuse_type", s, Archetypes)
}

// ParseDifficultyTier parses a difficulty_tier value, including n/a.
func ParseDifficultyTier(s string) (DifficultyTier, error) {
	return parseEnum("difficulty_tier", s, append([]DifficultyTier{TierNA}, Tiers...))
}

// ParseDeviceType parses a device_type value.
func ParseDeviceType(s string) (DeviceType, error) {
	return parseEnum("device_type", s, DeviceTypes)
}

// ParsePaymentMethod parses a payment_method value.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	return parseEnum("payment_method", s, PaymentMethods)
}

// ParseCVVResult parses a cvv_check_result value.
func ParseCVVResult(s string) (CVVResult, error) {
	return parseEnum("cvv_check_result", s, CVVResults)
}

// ParseAVSResult parses an avs_result value.
func ParseAVSResult(s string) (AVSResult, error) {
	return parseEnum("avs_result", s, AVSResults)
}

// ParseProcessorResponse parses a payment_processor_response value.
func ParseProcessorResponse(s string) (ProcessorResponse, error) {
	return parseEnum("payment_processor_response", s, ProcessorResponses)
}
