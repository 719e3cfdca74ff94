package domain

// Enrollment is a learner's enrollment record, passed through as served by
// the LMS after key normalization.
type Enrollment map[string]any

// Entitlement is a learner's course entitlement record, passed through.
type Entitlement map[string]any

// CatalogMembership tells whether the enterprise's catalogs contain a course.
type CatalogMembership struct {
	ContainsContentItems bool     `json:"containsContentItems"`
	CatalogList          []string `json:"catalogList,omitempty"`
}

// AggregateResult is everything the course page needs for one learner.
type AggregateResult struct {
	CourseDetails    *CourseDetails     `json:"courseDetails"`
	UserSubsidy      *Subsidy           `json:"userSubsidy"`
	UserEnrollments  []Enrollment       `json:"userEnrollments"`
	UserEntitlements []Entitlement      `json:"userEntitlements"`
	Catalog          *CatalogMembership `json:"catalog"`
}

// CoursePage is the view model served to the learner portal.
type CoursePage struct {
	Course              *CourseDetails     `json:"course"`
	ActiveCourseRun     *CourseRun         `json:"activeCourseRun"`
	AvailableCourseRuns []CourseRun        `json:"availableCourseRuns"`
	UserEnrollments     []Enrollment       `json:"userEnrollments"`
	UserEntitlements    []Entitlement      `json:"userEntitlements"`
	UserSubsidy         *Subsidy           `json:"userSubsidy"`
	Catalog             *CatalogMembership `json:"catalog"`
}

// NewCoursePage derives the page model from an aggregate. The active run is
// recomputed from the (possibly narrowed) course details.
func NewCoursePage(result *AggregateResult) *CoursePage {
	if result == nil {
		return nil
	}
	return &CoursePage{
		Course:              result.CourseDetails,
		ActiveCourseRun:     result.CourseDetails.ActiveCourseRun(),
		AvailableCourseRuns: result.CourseDetails.AvailableCourseRuns(),
		UserEnrollments:     result.UserEnrollments,
		UserEntitlements:    result.UserEntitlements,
		UserSubsidy:         result.UserSubsidy,
		Catalog:             result.Catalog,
	}
}
