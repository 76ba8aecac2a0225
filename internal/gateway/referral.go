package gateway

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/redline-leasing/driver-funnel/internal/model"
	"github.com/redline-leasing/driver-funnel/pkg/highlevel"
)

// Referral is a driver referral: the referring party plus the referred driver.
type Referral struct {
	ReferrerFirstName string `json:"referrer_first_name"`
	ReferrerLastName  string `json:"referrer_last_name"`
	ReferrerEmail     string `json:"referrer_email"`
	ReferrerPhone     string `json:"referrer_phone"`

	DriverFirstName string `json:"driver_first_name"`
	DriverLastName  string `json:"driver_last_name"`
	DriverEmail     string `json:"driver_email"`
	DriverPhone     string `json:"driver_phone"`
}

// Validate reports missing required fields.
func (r Referral) Validate() []model.FieldError {
	var errs []model.FieldError
	if r.ReferrerFirstName == "" {
		errs = append(errs, model.FieldError{Field: "referrer_first_name", Message: "Referrer first name is required."})
	}
	if r.ReferrerEmail == "" {
		errs = append(errs, model.FieldError{Field: "referrer_email", Message: "Referrer email is required."})
	}
	if r.DriverFirstName == "" {
		errs = append(errs, model.FieldError{Field: "driver_first_name", Message: "Driver first name is required."})
	}
	if r.DriverEmail == "" && r.DriverPhone == "" {
		errs = append(errs, model.FieldError{Field: "driver_email", Message: "Driver email or phone is required."})
	}
	return errs
}

// SubmitReferral creates two linked contact records: the referrer and the
// referred driver, cross-referenced by tags and a custom field.
func (g *Gateway) SubmitReferral(ctx context.Context, r Referral) (referrerID, driverID string, err error) {
	if g.client == nil {
		return "", "", ErrStoreNotConfigured
	}

	referrer, err := g.client.UpsertContact(ctx, highlevel.ContactUpsert{
		FirstName: r.ReferrerFirstName,
		LastName:  r.ReferrerLastName,
		Email:     r.ReferrerEmail,
		Phone:     r.ReferrerPhone,
		Tags:      []string{model.TagReferralProgram, model.TagReferrer},
	})
	if err != nil {
		return "", "", eris.Wrap(err, "gateway: create referrer")
	}

	driver, err := g.client.UpsertContact(ctx, highlevel.ContactUpsert{
		FirstName: r.DriverFirstName,
		LastName:  r.DriverLastName,
		Email:     r.DriverEmail,
		Phone:     r.DriverPhone,
		Tags:      []string{model.TagReferralProgram, model.TagReferredDriver, model.TagNewApplication},
		CustomField: highlevel.CustomFields{
			highlevel.FieldReferredBy: r.ReferrerEmail,
		}.Remote(),
	})
	if err != nil {
		return "", "", eris.Wrap(err, "gateway: create referred driver")
	}

	// Cross-reference the referrer back to the driver. Losing this tag does
	// not lose the referral itself, so it degrades to a warning.
	if err := g.client.AddTags(ctx, referrer.ID, []string{"referred:" + driver.ID}); err != nil {
		zap.L().Warn("referral cross-reference tag failed",
			zap.String("referrer_id", referrer.ID),
			zap.Error(err),
		)
	}

	return referrer.ID, driver.ID, nil
}
