package models

// Reason classifies why a submission was turned away.
type Reason string

const (
	ReasonInvalidPayload     Reason = "invalid_payload"
	ReasonLengthOutOfBounds  Reason = "length_out_of_bounds"
	ReasonTooFast            Reason = "too_fast"
	ReasonProfaneContent     Reason = "profane_content"
	ReasonLinkSpam           Reason = "link_spam"
	ReasonRateLimitCooldown  Reason = "rate_limited_cooldown"
	ReasonRateLimitCap       Reason = "rate_limited_cap"
	ReasonDuplicateContent   Reason = "duplicate_content"
	ReasonDuplicateReport    Reason = "duplicate_report"
	ReasonFeatureNotFound    Reason = "feature_not_found"
	ReasonStorageUnavailable Reason = "storage_unavailable"
)

// Verdict is a policy rejection. A nil *Verdict means the stage passed.
// Policy rejections are values, not errors: they are expected outcomes
// with user-facing messages, while errors are reserved for infrastructure
// failures.
type Verdict struct {
	Reason    Reason `json:"reason"`
	Retryable bool   `json:"retryable"`
	Message   string `json:"message"`
}

func Reject(reason Reason, message string) *Verdict {
	return &Verdict{Reason: reason, Message: message}
}

// RejectRetryable marks transient conditions (store outage) where the
// client may retry the same request later.
func RejectRetryable(reason Reason, message string) *Verdict {
	return &Verdict{Reason: reason, Retryable: true, Message: message}
}
