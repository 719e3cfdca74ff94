package course

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fastygo/learner-portal/domain"
	"github.com/fastygo/learner-portal/internal/infrastructure/metrics"
	appLogger "github.com/fastygo/learner-portal/pkg/logger"
	"github.com/fastygo/learner-portal/repository"
)

// Names of the primary lookups, reported in AggregationError.Source.
const (
	SourceCourseDetails     = "course_details"
	SourceUserEnrollments   = "user_enrollments"
	SourceUserEntitlements  = "user_entitlements"
	SourceCatalogMembership = "catalog_membership"
)

// Request identifies the course page to assemble.
type Request struct {
	CourseKey      string
	CourseRunKey   string
	EnterpriseUUID string
	// ActiveCourseRun overrides the advertised run when set.
	ActiveCourseRun *domain.CourseRun
}

type Dependencies struct {
	Courses     repository.CourseRepository
	Enrollments repository.EnrollmentRepository
	Catalogs    repository.CatalogRepository
	Licenses    repository.LicenseRepository
	Metrics     *metrics.Metrics
}

type UseCase struct {
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	catalogs    repository.CatalogRepository
	licenses    repository.LicenseRepository
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

func New(deps Dependencies, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		courses:     deps.Courses,
		enrollments: deps.Enrollments,
		catalogs:    deps.Catalogs,
		licenses:    deps.Licenses,
		metrics:     deps.Metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// FetchAll assembles everything the course page needs. The four primary
// lookups run concurrently and must all succeed; the subsidy lookup runs
// afterwards and never fails the aggregate.
func (uc *UseCase) FetchAll(ctx context.Context, req Request) (*domain.AggregateResult, error) {
	if strings.TrimSpace(req.CourseKey) == "" {
		return nil, domain.ErrMissingCourseKey
	}
	if strings.TrimSpace(req.EnterpriseUUID) == "" {
		return nil, domain.ErrMissingEnterpriseID
	}
	logger := appLogger.WithRequestID(ctx, uc.logger).With(
		zap.String("course_key", req.CourseKey),
		zap.String("enterprise_uuid", req.EnterpriseUUID),
	)

	var (
		course       *domain.CourseDetails
		enrollments  []domain.Enrollment
		entitlements []domain.Entitlement
		catalog      *domain.CatalogMembership
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := uc.courses.GetCourseDetails(gctx, req.CourseKey)
		if err != nil {
			return &domain.AggregationError{Source: SourceCourseDetails, Err: err}
		}
		course = res
		return nil
	})
	g.Go(func() error {
		res, err := uc.enrollments.ListEnrollments(gctx)
		if err != nil {
			return &domain.AggregationError{Source: SourceUserEnrollments, Err: err}
		}
		enrollments = res
		return nil
	})
	g.Go(func() error {
		res, err := uc.enrollments.ListEntitlements(gctx)
		if err != nil {
			return &domain.AggregationError{Source: SourceUserEntitlements, Err: err}
		}
		entitlements = res
		return nil
	})
	g.Go(func() error {
		res, err := uc.catalogs.ContainsContent(gctx, req.EnterpriseUUID, req.CourseKey)
		if err != nil {
			return &domain.AggregationError{Source: SourceCatalogMembership, Err: err}
		}
		catalog = res
		return nil
	})
	if err := g.Wait(); err != nil {
		uc.metrics.Aggregation("failure")
		logger.Warn("course aggregation failed", zap.Error(err))
		return nil, err
	}
	if course == nil {
		uc.metrics.Aggregation("failure")
		return nil, &domain.AggregationError{Source: SourceCourseDetails, Err: domain.ErrCourseNotFound}
	}

	activeRun := req.ActiveCourseRun
	if activeRun == nil {
		activeRun = course.ActiveCourseRun()
	}
	subsidy := uc.ResolveUserSubsidy(ctx, uc.subsidySources(req.EnterpriseUUID, activeRun))

	if req.CourseRunKey != "" && !course.NarrowToCourseRun(req.CourseRunKey) {
		logger.Debug("course run override ignored", zap.String("course_run_key", req.CourseRunKey))
	}

	uc.metrics.Aggregation("success")
	return &domain.AggregateResult{
		CourseDetails:    course,
		UserSubsidy:      subsidy,
		UserEnrollments:  enrollments,
		UserEntitlements: entitlements,
		Catalog:          catalog,
	}, nil
}

// subsidySources lists subsidy lookups in priority order. Without an active
// run there is nothing to look a license up for.
func (uc *UseCase) subsidySources(enterpriseUUID string, activeRun *domain.CourseRun) []SubsidySource {
	if activeRun == nil || activeRun.Key == "" || uc.licenses == nil {
		return nil
	}
	runKey := activeRun.Key
	return []SubsidySource{
		{
			Type: domain.SubsidyTypeLicense,
			Fetch: func(ctx context.Context) (domain.SubsidyPayload, error) {
				return uc.licenses.GetLicenseSubsidy(ctx, enterpriseUUID, runKey)
			},
		},
	}
}
