// Package model defines the transaction record produced by the generators and the
// categorical vocabularies its fields are drawn from.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"
)

// DateTimeLayout is the serialized form of every datetime column.
const DateTimeLayout = "2006-01-02 15:04:05"

// Currency is the settlement currency of every generated order.
const Currency = "USD"

// ErrInvariantViolation is returned by Validate when a record contradicts itself.
var ErrInvariantViolation = errors.New("record invariant violated")

// TransactionRecord is one synthesized e-commerce transaction with its ground-truth labels.
// Records are values; nothing edits a record after its generator returns it.
type TransactionRecord struct {
	Timestamp          time.Time `json:"timestamp"`
	AccountCreatedDate time.Time `json:"account_created_date"`

	TransactionID string  `json:"transaction_id"`
	UserID        string  `json:"user_id"`
	Currency      string  `json:"currency"`
	OrderAmount   float64 `json:"order_amount"`

	AccountAgeDays         int    `json:"account_age_days"`
	EmailDomain            string `json:"email_domain"`
	PhoneVerified          bool   `json:"phone_verified"`
	EmailVerified          bool   `json:"email_verified"`
	ProfileComplete        bool   `json:"profile_complete"`
	FailedLoginAttempts24h int    `json:"failed_login_attempts_24h"`
	SuccessfulLogins7d     int    `json:"successful_logins_7d"`
	PasswordResetCount30d  int    `json:"password_reset_count_30d"`

	DeviceID         string     `json:"device_id"`
	IPAddress        string     `json:"ip_address"`
	IPCountry        string     `json:"ip_country"`
	UserAgent        string     `json:"user_agent"`
	DeviceType       DeviceType `json:"device_type"`
	NewDevice        bool       `json:"new_device"`
	VPNProxyDetected bool       `json:"vpn_proxy_detected"`

	PaymentMethod            PaymentMethod     `json:"payment_method"`
	CardBIN                  string            `json:"card_bin"`
	CardCountry              string            `json:"card_country"`
	BillingCountry           string            `json:"billing_country"`
	ShippingCountry          string            `json:"shipping_country"`
	BillingShippingMatch     bool              `json:"billing_shipping_match"`
	CVVCheckResult           CVVResult         `json:"cvv_check_result"`
	AVSResult                AVSResult         `json:"avs_result"`
	PaymentProcessorResponse ProcessorResponse `json:"payment_processor_response"`

	DaysSinceAccountFirstPurchase int     `json:"days_since_account_first_purchase"`
	TotalOrdersLifetime           int     `json:"total_orders_lifetime"`
	OrdersLast24h                 int     `json:"orders_last_24h"`
	OrdersLast7d                  int     `json:"orders_last_7d"`
	AvgOrderValue                 float64 `json:"avg_order_value"`
	SessionDurationSeconds        int     `json:"session_duration_seconds"`
	CartAdditionsSession          int     `json:"cart_additions_session"`
	HighRiskCategory              bool    `json:"high_risk_category"`

	IsAbuse         bool           `json:"is_abuse"`
	AbuseType       AbuseType      `json:"abuse_type"`
	AbuseConfidence float64        `json:"abuse_confidence"`
	DifficultyTier  DifficultyTier `json:"difficulty_tier"`
}

// AccountAge returns the whole days between account creation and the transaction.
func AccountAge(created, ts time.Time) int {
	d := ts.Sub(created)
	if d < 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// Validate checks every enumeration and cross-field invariant and returns all
// violations joined together.
func (r *TransactionRecord) Validate() error {
	errs := r.enumErrors()
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvariantViolation}, args...)...))
	}

	if r.IsAbuse != r.AbuseType.IsAbuse() {
		fail("is_abuse=%t disagrees with abuse_type=%s", r.IsAbuse, r.AbuseType)
	}
	if r.BillingShippingMatch != (r.BillingCountry == r.ShippingCountry) {
		fail("billing_shipping_match=%t but billing=%s shipping=%s",
			r.BillingShippingMatch, r.BillingCountry, r.ShippingCountry)
	}
	if (r.DifficultyTier == TierNA) == r.AbuseType.Tiered() {
		fail("difficulty_tier=%s invalid for abuse_type=%s", r.DifficultyTier, r.AbuseType)
	}
	if r.AccountAgeDays < 0 {
		fail("account_age_days=%d is negative", r.AccountAgeDays)
	}
	if !(r.OrderAmount > 0) {
		fail("order_amount=%.2f is not positive", r.OrderAmount)
	}
	if r.AbuseConfidence < 0 || r.AbuseConfidence > 1 || math.IsNaN(r.AbuseConfidence) {
		fail("abuse_confidence=%.2f outside [0,1]", r.AbuseConfidence)
	}
	if r.DaysSinceAccountFirstPurchase > r.AccountAgeDays {
		fail("days_since_account_first_purchase=%d exceeds account age %d",
			r.DaysSinceAccountFirstPurchase, r.AccountAgeDays)
	}
	if r.OrdersLast24h > r.OrdersLast7d {
		fail("orders_last_24h=%d exceeds orders_last_7d=%d", r.OrdersLast24h, r.OrdersLast7d)
	}

	return errors.Join(errs...)
}

type enumField struct {
	column string
	value  string
	valid  bool
}

func (r *TransactionRecord) enumFields() []enumField {
	return []enumField{
		{"device_type", string(r.DeviceType), slices.Contains(DeviceTypes, r.DeviceType)},
		{"payment_method", string(r.PaymentMethod), slices.Contains(PaymentMethods, r.PaymentMethod)},
		{"cvv_check_result", string(r.CVVCheckResult), slices.Contains(CVVResults, r.CVVCheckResult)},
		{"avs_result", string(r.AVSResult), slices.Contains(AVSResults, r.AVSResult)},
		{"payment_processor_response", string(r.PaymentProcessorResponse), slices.Contains(ProcessorResponses, r.PaymentProcessorResponse)},
		{"abuse_type", string(r.AbuseType), r.AbuseType.Valid()},
		{"difficulty_tier", string(r.DifficultyTier), r.DifficultyTier.Valid()},
	}
}

// InvalidEnums returns the enumerated columns holding unknown values, in Columns order.
func (r *TransactionRecord) InvalidEnums() []string {
	var out []string
	for _, f := range r.enumFields() {
		if !f.valid {
			out = append(out, f.column)
		}
	}
	return out
}

func (r *TransactionRecord) enumErrors() []error {
	var errs []error
	for _, f := range r.enumFields() {
		if !f.valid {
			errs = append(errs, fmt.Errorf("%w: %s=%q", ErrInvalidEnum, f.column, f.value))
		}
	}
	return errs
}

// Columns is the stable column order used by every tabular export.
var Columns = []string{
	"transaction_id", "timestamp", "user_id", "order_amount", "currency",
	"account_created_date", "account_age_days", "email_domain", "phone_verified",
	"email_verified", "profile_complete", "failed_login_attempts_24h",
	"successful_logins_7d", "password_reset_count_30d",
	"device_id", "ip_address", "ip_country", "user_agent", "device_type",
	"new_device", "vpn_proxy_detected",
	"payment_method", "card_bin", "card_country", "billing_country", "shipping_country",
	"billing_shipping_match", "cvv_check_result", "avs_result", "payment_processor_response",
	"days_since_account_first_purchase", "total_orders_lifetime", "orders_last_24h",
	"orders_last_7d", "avg_order_value", "session_duration_seconds",
	"cart_additions_session", "high_risk_category",
	"is_abuse", "abuse_type", "abuse_confidence", "difficulty_tier",
}

// LabelColumns are stripped before a record is sent to a scoring service.
var LabelColumns = []string{"is_abuse", "abuse_type", "abuse_confidence", "difficulty_tier"}

// FormatBool renders booleans as True/False, the spelling pandas readers expect.
func FormatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func formatMoney(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// Values renders the record in Columns order.
func (r *TransactionRecord) Values() []string {
	return []string{
		r.TransactionID,
		r.Timestamp.Format(DateTimeLayout),
		r.UserID,
		formatMoney(r.OrderAmount),
		r.Currency,
		r.AccountCreatedDate.Format(DateTimeLayout),
		strconv.Itoa(r.AccountAgeDays),
		r.EmailDomain,
		FormatBool(r.PhoneVerified),
		FormatBool(r.EmailVerified),
		FormatBool(r.ProfileComplete),
		strconv.Itoa(r.FailedLoginAttempts24h),
		strconv.Itoa(r.SuccessfulLogins7d),
		strconv.Itoa(r.PasswordResetCount30d),
		r.DeviceID,
		r.IPAddress,
		r.IPCountry,
		r.UserAgent,
		string(r.DeviceType),
		FormatBool(r.NewDevice),
		FormatBool(r.VPNProxyDetected),
		string(r.PaymentMethod),
		r.CardBIN,
		r.CardCountry,
		r.BillingCountry,
		r.ShippingCountry,
		FormatBool(r.BillingShippingMatch),
		string(r.CVVCheckResult),
		string(r.AVSResult),
		string(r.PaymentProcessorResponse),
		strconv.Itoa(r.DaysSinceAccountFirstPurchase),
		strconv.Itoa(r.TotalOrdersLifetime),
		strconv.Itoa(r.OrdersLast24h),
		strconv.Itoa(r.OrdersLast7d),
		formatMoney(r.AvgOrderValue),
		strconv.Itoa(r.SessionDurationSeconds),
		strconv.Itoa(r.CartAdditionsSession),
		FormatBool(r.HighRiskCategory),
		FormatBool(r.IsAbuse),
		string(r.AbuseType),
		formatMoney(r.AbuseConfidence),
		string(r.DifficultyTier),
	}
}

// ParseRecord builds a record from column values keyed by column name. Enumerations
// are checked here so malformed input never reaches downstream stages.
func ParseRecord(fields map[string]string) (TransactionRecord, error) {
	p := fieldParser{fields: fields}
	r := TransactionRecord{
		TransactionID:                 p.str("transaction_id"),
		Timestamp:                     p.datetime("timestamp"),
		UserID:                        p.str("user_id"),
		OrderAmount:                   p.float("order_amount"),
		Currency:                      p.str("currency"),
		AccountCreatedDate:            p.datetime("account_created_date"),
		AccountAgeDays:                p.int("account_age_days"),
		EmailDomain:                   p.str("email_domain"),
		PhoneVerified:                 p.bool("phone_verified"),
		EmailVerified:                 p.bool("email_verified"),
		ProfileComplete:               p.bool("profile_complete"),
		FailedLoginAttempts24h:        p.int("failed_login_attempts_24h"),
		SuccessfulLogins7d:            p.int("successful_logins_7d"),
		PasswordResetCount30d:         p.int("password_reset_count_30d"),
		DeviceID:                      p.str("device_id"),
		IPAddress:                     p.str("ip_address"),
		IPCountry:                     p.str("ip_country"),
		UserAgent:                     p.str("user_agent"),
		NewDevice:                     p.bool("new_device"),
		VPNProxyDetected:              p.bool("vpn_proxy_detected"),
		CardBIN:                       p.str("card_bin"),
		CardCountry:                   p.str("card_country"),
		BillingCountry:                p.str("billing_country"),
		ShippingCountry:               p.str("shipping_country"),
		BillingShippingMatch:          p.bool("billing_shipping_match"),
		DaysSinceAccountFirstPurchase: p.int("days_since_account_first_purchase"),
		TotalOrdersLifetime:           p.int("total_orders_lifetime"),
		OrdersLast24h:                 p.int("orders_last_24h"),
		OrdersLast7d:                  p.int("orders_last_7d"),
		AvgOrderValue:                 p.float("avg_order_value"),
		SessionDurationSeconds:        p.int("session_duration_seconds"),
		CartAdditionsSession:          p.int("cart_additions_session"),
		HighRiskCategory:              p.bool("high_risk_category"),
		IsAbuse:                       p.bool("is_abuse"),
		AbuseConfidence:               p.float("abuse_confidence"),
	}
	r.DeviceType = parseColumn(&p, "device_type", ParseDeviceType)
	r.PaymentMethod = parseColumn(&p, "payment_method", ParsePaymentMethod)
	r.CVVCheckResult = parseColumn(&p, "cvv_check_result", ParseCVVResult)
	r.AVSResult = parseColumn(&p, "avs_result", ParseAVSResult)
	r.PaymentProcessorResponse = parseColumn(&p, "payment_processor_response", ParseProcessorResponse)
	r.AbuseType = parseColumn(&p, "abuse_type", ParseAbuseType)
	r.DifficultyTier = parseColumn(&p, "difficulty_tier", ParseDifficultyTier)

	if len(p.errs) > 0 {
		return TransactionRecord{}, errors.Join(p.errs...)
	}
	return r, nil
}

type fieldParser struct {
	fields map[string]string
	errs   []error
}

func (p *fieldParser) raw(column string) (string, bool) {
	v, ok := p.fields[column]
	if !ok {
		p.errs = append(p.errs, fmt.Errorf("missing column %q", column))
	}
	return v, ok
}

func (p *fieldParser) str(column string) string {
	v, _ := p.raw(column)
	return v
}

func (p *fieldParser) int(column string) int {
	v, ok := p.raw(column)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("column %q: %w", column, err))
	}
	return n
}

func (p *fieldParser) float(column string) float64 {
	v, ok := p.raw(column)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("column %q: %w", column, err))
	}
	return f
}

func (p *fieldParser) bool(column string) bool {
	v, ok := p.raw(column)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("column %q: %w", column, err))
	}
	return b
}

func (p *fieldParser) datetime(column string) time.Time {
	v, ok := p.raw(column)
	if !ok {
		return time.Time{}
	}
	t, err := time.ParseInLocation(DateTimeLayout, v, time.UTC)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("column %q: %w", column, err))
	}
	return t
}

func parseColumn[T ~string](p *fieldParser, column string, parse func(string) (T, error)) T {
	v, ok := p.raw(column)
	if !ok {
		return ""
	}
	out, err := parse(v)
	if err != nil {
		p.errs = append(p.errs, err)
	}
	return out
}

// recordJSON shadows the datetime fields so JSON exports share the tabular layout.
type recordJSON struct {
	recordAlias
	Timestamp          string `json:"timestamp"`
	AccountCreatedDate string `json:"account_created_date"`
}

type recordAlias TransactionRecord

// MarshalJSON encodes datetimes as DateTimeLayout strings.
func (r TransactionRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		recordAlias:        recordAlias(r),
		Timestamp:          r.Timestamp.Format(DateTimeLayout),
		AccountCreatedDate: r.AccountCreatedDate.Format(DateTimeLayout),
	})
}

// UnmarshalJSON decodes the layout written by MarshalJSON and validates enumerations.
func (r *TransactionRecord) UnmarshalJSON(data []byte) error {
	var aux recordJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	out := TransactionRecord(aux.recordAlias)

	var err error
	if out.Timestamp, err = time.ParseInLocation(DateTimeLayout, aux.Timestamp, time.UTC); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if out.AccountCreatedDate, err = time.ParseInLocation(DateTimeLayout, aux.AccountCreatedDate, time.UTC); err != nil {
		return fmt.Errorf("account_created_date: %w", err)
	}
	if errs := out.enumErrors(); len(errs) > 0 {
		return errors.Join(errs...)
	}

	*r = out
	return nil
}
