package platform

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fastygo/learner-portal/domain"
	"github.com/fastygo/learner-portal/internal/infrastructure/upstream"
	"github.com/fastygo/learner-portal/repository"
)

type licenseRepository struct {
	client  Getter
	baseURL string
}

// NewLicenseRepository looks up license subsidies in the license manager.
func NewLicenseRepository(client Getter, licenseManagerBaseURL string) repository.LicenseRepository {
	return &licenseRepository{client: client, baseURL: licenseManagerBaseURL}
}

func (r *licenseRepository) GetLicenseSubsidy(ctx context.Context, enterpriseUUID, courseRunKey string) (domain.SubsidyPayload, error) {
	query := url.Values{}
	query.Set("enterprise_customer_uuid", enterpriseUUID)
	query.Set("course_key", courseRunKey)

	var payload domain.SubsidyPayload
	err := r.client.GetJSON(ctx, upstream.Request{
		Service: ServiceLicenseManager,
		URL:     fmt.Sprintf("%s/api/v1/license-subsidy/?%s", r.baseURL, query.Encode()),
		Cache:   upstream.PerUserCache,
		// A failure here only means "no license subsidy".
		NoRetry: true,
	}, &payload)
	if err != nil {
		return nil, err
	}
	return payload, nil
}
