package platform

import (
	"context"

	"github.com/fastygo/learner-portal/domain"
	"github.com/fastygo/learner-portal/internal/infrastructure/upstream"
	"github.com/fastygo/learner-portal/repository"
)

type enrollmentRepository struct {
	client  Getter
	baseURL string
}

// NewEnrollmentRepository reads the learner's enrollments and entitlements
// from the LMS.
func NewEnrollmentRepository(client Getter, lmsBaseURL string) repository.EnrollmentRepository {
	return &enrollmentRepository{client: client, baseURL: lmsBaseURL}
}

func (r *enrollmentRepository) ListEnrollments(ctx context.Context) ([]domain.Enrollment, error) {
	var enrollments []domain.Enrollment
	// The enrollment API answers 404 when the path has a trailing slash.
	err := r.client.GetJSON(ctx, upstream.Request{
		Service: ServiceLMS,
		URL:     r.baseURL + "/api/enrollment/v1/enrollment",
	}, &enrollments)
	if err != nil {
		return nil, err
	}
	if enrollments == nil {
		enrollments = []domain.Enrollment{}
	}
	return enrollments, nil
}

type entitlementPage struct {
	Results []domain.Entitlement `json:"results"`
}

func (r *enrollmentRepository) ListEntitlements(ctx context.Context) ([]domain.Entitlement, error) {
	var page entitlementPage
	err := r.client.GetJSON(ctx, upstream.Request{
		Service: ServiceLMS,
		URL:     r.baseURL + "/api/entitlements/v1/entitlements/",
	}, &page)
	if err != nil {
		return nil, err
	}
	if page.Results == nil {
		page.Results = []domain.Entitlement{}
	}
	return page.Results, nil
}
