package highlevel

// FieldKey is a typed custom-field key. The remote store keys custom fields by
// opaque strings; the mapping table below is the only place those strings
// appear, so untyped keys never leak into the funnel logic.
type FieldKey string

const (
	FieldSMSOptIn           FieldKey = "sms_opt_in"
	FieldLeadSource         FieldKey = "lead_source"
	FieldReferralCode       FieldKey = "referral_code"
	FieldHasCDL             FieldKey = "has_cdl"
	FieldHasMedicalCard     FieldKey = "has_medical_card"
	FieldExperienceMonths   FieldKey = "experience_months"
	FieldState              FieldKey = "state"
	FieldUSWorkEligible     FieldKey = "us_work_eligible"
	FieldWeeklyBudget       FieldKey = "weekly_budget"
	FieldTruckType          FieldKey = "truck_type"
	FieldFreightType        FieldKey = "freight_type"
	FieldHasExistingCarrier FieldKey = "has_existing_carrier"
	FieldCarrierName        FieldKey = "carrier_name"
	FieldIsPrequalified     FieldKey = "is_prequalified"
	FieldPartialStep        FieldKey = "partial_step"
	FieldReferredBy         FieldKey = "referred_by"
)

// remoteFieldKeys maps typed keys to the store's custom-field identifiers.
var remoteFieldKeys = map[FieldKey]string{
	FieldSMSOptIn:           "contact.sms_opt_in",
	FieldLeadSource:         "contact.lead_source",
	FieldReferralCode:       "contact.referral_code",
	FieldHasCDL:             "contact.has_cdl",
	FieldHasMedicalCard:     "contact.has_medical_card",
	FieldExperienceMonths:   "contact.experience_months",
	FieldState:              "contact.state_of_residence",
	FieldUSWorkEligible:     "contact.us_work_eligible",
	FieldWeeklyBudget:       "contact.weekly_payment_budget",
	FieldTruckType:          "contact.truck_type_preference",
	FieldFreightType:        "contact.freight_type_preference",
	FieldHasExistingCarrier: "contact.has_existing_carrier",
	FieldCarrierName:        "contact.carrier_name",
	FieldIsPrequalified:     "contact.is_prequalified",
	FieldPartialStep:        "contact.partial_step",
	FieldReferredBy:         "contact.referred_by",
}

// CustomFields is a typed custom-field set.
type CustomFields map[FieldKey]string

// Remote converts typed keys to the store's string-keyed representation.
// Unknown keys are dropped rather than sent with a guessed identifier.
func (f CustomFields) Remote() map[string]string {
	if len(f) == 0 {
		return nil
	}
	out := make(map[string]string, len(f))
	for k, v := range f {
		remote, ok := remoteFieldKeys[k]
		if !ok {
			continue
		}
		out[remote] = v
	}
	return out
}
