package model

// Pipeline tags attached to contacts in the external store. Opaque strings on
// the remote side; typed here so the priority table is the single place they
// appear.
const (
	TagActive            = "active"
	TagCarrierMatched    = "carrier_matched"
	TagCarrierMatching   = "carrier_matching"
	TagApproved          = "approved"
	TagDocumentsReceived = "documents_received"
	TagDocumentsNeeded   = "documents_needed"
	TagInReview          = "in_review"
	TagDisqualified      = "disqualified"
	TagNewApplication    = "new_application"

	TagPrequalified    = "prequalified"
	TagNotPrequalified = "not-prequalified"

	TagReferralProgram = "referral-program"
	TagReferrer        = "referrer"
	TagReferredDriver  = "referred-driver"
)

// StatusInfo is the user-facing status triple for a contact.
type StatusInfo struct {
	Status      string `json:"status"`
	Description string `json:"description"`
	Step        int    `json:"step"`
}

type statusEntry struct {
	tag  string
	info StatusInfo
}

// statusPriority is the fixed resolution order. The first tag present on the
// contact wins; later entries are ignored even if their tags are also present.
var statusPriority = []statusEntry{
	{TagActive, StatusInfo{"Active", "You are an active driver in the lease-to-own program.", 8}},
	{TagCarrierMatched, StatusInfo{"Carrier Matched", "You have been matched with a carrier partner.", 7}},
	{TagCarrierMatching, StatusInfo{"Carrier Matching", "We are matching you with a carrier partner.", 6}},
	{TagApproved, StatusInfo{"Approved", "Your application has been approved.", 5}},
	{TagDocumentsReceived, StatusInfo{"Documents Received", "Your documents are being verified.", 4}},
	{TagDocumentsNeeded, StatusInfo{"Documents Needed", "We need a few documents to keep your application moving.", 3}},
	{TagInReview, StatusInfo{"In Review", "Your application is being reviewed by our team.", 2}},
	{TagDisqualified, StatusInfo{"Not Qualified", "You do not currently meet the program requirements.", 1}},
	{TagNewApplication, StatusInfo{"Application Received", "We received your application and will be in touch shortly.", 1}},
}

// DefaultStatus is returned when no pipeline tag is present on the contact.
var DefaultStatus = StatusInfo{"Pending", "Your application is pending.", 1}

// ResolveStatus maps a contact's tag set to a status triple via the fixed
// priority order.
func ResolveStatus(tags []string) StatusInfo {
	present := make(map[string]bool, len(tags))
	for _, t := range tags {
		present[t] = true
	}
	for _, e := range statusPriority {
		if present[e.tag] {
			return e.info
		}
	}
	return DefaultStatus
}
