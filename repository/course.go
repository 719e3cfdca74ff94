package repository

import (
	"context"

	"github.com/fastygo/learner-portal/domain"
)

type CourseRepository interface {
	GetCourseDetails(ctx context.Context, courseKey string) (*domain.CourseDetails, error)
}

// EnrollmentRepository serves the records of the learner the context
// authenticates.
type EnrollmentRepository interface {
	ListEnrollments(ctx context.Context) ([]domain.Enrollment, error)
	ListEntitlements(ctx context.Context) ([]domain.Entitlement, error)
}

type CatalogRepository interface {
	ContainsContent(ctx context.Context, enterpriseUUID, courseKey string) (*domain.CatalogMembership, error)
}

type LicenseRepository interface {
	GetLicenseSubsidy(ctx context.Context, enterpriseUUID, courseRunKey string) (domain.SubsidyPayload, error)
}
