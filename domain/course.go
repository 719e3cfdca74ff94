package domain

import (
	"encoding/json"
	"strings"
)

const availabilityArchived = "archived"

// CourseRun is a single scheduled offering of a course. Catalog fields
// without a typed counterpart travel in Extra.
type CourseRun struct {
	Key             string `json:"key"`
	UUID            string `json:"uuid"`
	Title           string `json:"title,omitempty"`
	Start           string `json:"start,omitempty"`
	End             string `json:"end,omitempty"`
	EnrollmentStart string `json:"enrollmentStart,omitempty"`
	EnrollmentEnd   string `json:"enrollmentEnd,omitempty"`
	Availability    string `json:"availability,omitempty"`
	PacingType      string `json:"pacingType,omitempty"`
	IsMarketable    bool   `json:"isMarketable"`
	IsEnrollable    bool   `json:"isEnrollable"`

	Extra map[string]json.RawMessage `json:"-"`
}

// CourseDetails is the catalog view of a course as served by the discovery
// service, after key normalization. Fields without a typed counterpart are
// kept in Extra and written back out unchanged.
type CourseDetails struct {
	Key                     string      `json:"key"`
	UUID                    string      `json:"uuid,omitempty"`
	Title                   string      `json:"title"`
	ShortDescription        string      `json:"shortDescription,omitempty"`
	FullDescription         string      `json:"fullDescription,omitempty"`
	CourseRuns              []CourseRun `json:"courseRuns"`
	CourseRunKeys           []string    `json:"courseRunKeys"`
	CanonicalCourseRunKey   string      `json:"canonicalCourseRunKey,omitempty"`
	AdvertisedCourseRunUUID string      `json:"advertisedCourseRunUuid,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type (
	courseRunFields     CourseRun
	courseDetailsFields CourseDetails
)

var (
	courseRunKeys     = jsonFieldNames(courseRunFields{})
	courseDetailsKeys = jsonFieldNames(courseDetailsFields{})
)

func (r *CourseRun) UnmarshalJSON(data []byte) error {
	var typed courseRunFields
	extra, err := splitExtra(data, &typed, courseRunKeys)
	if err != nil {
		return err
	}
	typed.Extra = extra
	*r = CourseRun(typed)
	return nil
}

func (r CourseRun) MarshalJSON() ([]byte, error) {
	return mergeExtra(courseRunFields(r), r.Extra)
}

func (c *CourseDetails) UnmarshalJSON(data []byte) error {
	var typed courseDetailsFields
	extra, err := splitExtra(data, &typed, courseDetailsKeys)
	if err != nil {
		return err
	}
	typed.Extra = extra
	*c = CourseDetails(typed)
	return nil
}

func (c CourseDetails) MarshalJSON() ([]byte, error) {
	return mergeExtra(courseDetailsFields(c), c.Extra)
}

// IsArchived reports whether the run has been archived by the catalog.
func (r CourseRun) IsArchived() bool {
	return strings.EqualFold(strings.TrimSpace(r.Availability), availabilityArchived)
}

// IsAvailable reports whether learners can currently enroll in the run.
func (r CourseRun) IsAvailable() bool {
	return r.IsMarketable && r.IsEnrollable && !r.IsArchived()
}

// ActiveCourseRun returns the advertised run, or nil when the course does not
// advertise one of its runs.
func (c *CourseDetails) ActiveCourseRun() *CourseRun {
	if c == nil || c.AdvertisedCourseRunUUID == "" {
		return nil
	}
	for i := range c.CourseRuns {
		if c.CourseRuns[i].UUID == c.AdvertisedCourseRunUUID {
			run := c.CourseRuns[i]
			return &run
		}
	}
	return nil
}

// AvailableCourseRuns returns the runs open for enrollment, in catalog order.
func (c *CourseDetails) AvailableCourseRuns() []CourseRun {
	if c == nil {
		return nil
	}
	runs := make([]CourseRun, 0, len(c.CourseRuns))
	for _, run := range c.CourseRuns {
		if run.IsAvailable() {
			runs = append(runs, run)
		}
	}
	return runs
}

// NarrowToCourseRun restricts the course to the available run identified by
// runKey. It returns false and leaves the course untouched when no available
// run has that key.
func (c *CourseDetails) NarrowToCourseRun(runKey string) bool {
	if c == nil || runKey == "" {
		return false
	}
	for _, run := range c.AvailableCourseRuns() {
		if run.Key != runKey {
			continue
		}
		c.CanonicalCourseRunKey = runKey
		c.CourseRunKeys = []string{runKey}
		c.CourseRuns = []CourseRun{run}
		c.AdvertisedCourseRunUUID = run.UUID
		return true
	}
	return false
}
