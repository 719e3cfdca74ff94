package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoCourse() *CourseDetails {
	return &CourseDetails{
		Key:   "edX+DemoX",
		UUID:  "course-uuid",
		Title: "Demonstration Course",
		CourseRuns: []CourseRun{
			{Key: "course-v1:edX+DemoX+2022", UUID: "run-2022", Availability: "Archived", IsMarketable: true, IsEnrollable: true},
			{Key: "course-v1:edX+DemoX+2023", UUID: "run-2023", Availability: "Current", IsMarketable: true, IsEnrollable: true},
			{Key: "course-v1:edX+DemoX+2024", UUID: "run-2024", Availability: "Upcoming", IsMarketable: true, IsEnrollable: true},
			{Key: "course-v1:edX+DemoX+2025", UUID: "run-2025", Availability: "Upcoming", IsMarketable: false, IsEnrollable: true},
		},
		CourseRunKeys: []string{
			"course-v1:edX+DemoX+2022",
			"course-v1:edX+DemoX+2023",
			"course-v1:edX+DemoX+2024",
			"course-v1:edX+DemoX+2025",
		},
		CanonicalCourseRunKey:   "course-v1:edX+DemoX+2024",
		AdvertisedCourseRunUUID: "run-2024",
	}
}

func TestActiveCourseRun(t *testing.T) {
	course := demoCourse()

	run := course.ActiveCourseRun()
	require.NotNil(t, run)
	assert.Equal(t, "course-v1:edX+DemoX+2024", run.Key)

	course.AdvertisedCourseRunUUID = "missing"
	assert.Nil(t, course.ActiveCourseRun())

	course.AdvertisedCourseRunUUID = ""
	assert.Nil(t, course.ActiveCourseRun())

	var nilCourse *CourseDetails
	assert.Nil(t, nilCourse.ActiveCourseRun())
}

func TestAvailableCourseRuns(t *testing.T) {
	runs := demoCourse().AvailableCourseRuns()

	keys := make([]string, 0, len(runs))
	for _, run := range runs {
		keys = append(keys, run.Key)
	}
	assert.Equal(t, []string{"course-v1:edX+DemoX+2023", "course-v1:edX+DemoX+2024"}, keys)
}

func TestCourseRunIsArchivedIgnoresCase(t *testing.T) {
	assert.True(t, CourseRun{Availability: " archived"}.IsArchived())
	assert.True(t, CourseRun{Availability: "ARCHIVED"}.IsArchived())
	assert.False(t, CourseRun{}.IsArchived())
}

func TestNarrowToCourseRun(t *testing.T) {
	course := demoCourse()

	require.True(t, course.NarrowToCourseRun("course-v1:edX+DemoX+2023"))

	require.Len(t, course.CourseRuns, 1)
	assert.Equal(t, "course-v1:edX+DemoX+2023", course.CourseRuns[0].Key)
	assert.Equal(t, []string{"course-v1:edX+DemoX+2023"}, course.CourseRunKeys)
	assert.Equal(t, "course-v1:edX+DemoX+2023", course.CanonicalCourseRunKey)
	assert.Equal(t, "run-2023", course.AdvertisedCourseRunUUID)
}

func TestNarrowToCourseRunIsIdempotent(t *testing.T) {
	once := demoCourse()
	require.True(t, once.NarrowToCourseRun("course-v1:edX+DemoX+2023"))

	twice := demoCourse()
	require.True(t, twice.NarrowToCourseRun("course-v1:edX+DemoX+2023"))
	require.True(t, twice.NarrowToCourseRun("course-v1:edX+DemoX+2023"))

	assert.Equal(t, once, twice)
}

func TestNarrowToCourseRunWithoutMatchLeavesCourseUntouched(t *testing.T) {
	for _, key := range []string{
		"course-v1:edX+DemoX+1999",
		"course-v1:edX+DemoX+2022", // archived
		"course-v1:edX+DemoX+2025", // not marketable
		"",
	} {
		course := demoCourse()
		before, err := json.Marshal(course)
		require.NoError(t, err)

		assert.False(t, course.NarrowToCourseRun(key), key)

		after, err := json.Marshal(course)
		require.NoError(t, err)
		assert.Equal(t, string(before), string(after), key)
	}
}

func TestCourseDetailsKeepsUntypedFields(t *testing.T) {
	raw := `{
		"key": "edX+DemoX",
		"title": "Demonstration Course",
		"levelType": "Introductory",
		"subjects": [{"name": "Computer Science"}],
		"advertisedCourseRunUuid": "run-2023",
		"courseRunKeys": ["course-v1:edX+DemoX+2022", "course-v1:edX+DemoX+2023"],
		"courseRuns": [
			{"key": "course-v1:edX+DemoX+2022", "uuid": "run-2022", "availability": "Archived", "isMarketable": true, "isEnrollable": true},
			{"key": "course-v1:edX+DemoX+2023", "uuid": "run-2023", "isMarketable": true, "isEnrollable": true,
			 "weeksToComplete": 8, "seats": [{"type": "verified", "price": "49.00"}]}
		]
	}`

	var course CourseDetails
	require.NoError(t, json.Unmarshal([]byte(raw), &course))
	assert.Contains(t, course.Extra, "levelType")
	assert.NotContains(t, course.Extra, "courseRuns")
	assert.Contains(t, course.CourseRuns[1].Extra, "seats")

	require.True(t, course.NarrowToCourseRun("course-v1:edX+DemoX+2023"))
	out, err := json.Marshal(course)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"key": "edX+DemoX",
		"title": "Demonstration Course",
		"levelType": "Introductory",
		"subjects": [{"name": "Computer Science"}],
		"canonicalCourseRunKey": "course-v1:edX+DemoX+2023",
		"advertisedCourseRunUuid": "run-2023",
		"courseRunKeys": ["course-v1:edX+DemoX+2023"],
		"courseRuns": [
			{"key": "course-v1:edX+DemoX+2023", "uuid": "run-2023", "isMarketable": true, "isEnrollable": true,
			 "weeksToComplete": 8, "seats": [{"type": "verified", "price": "49.00"}]}
		]
	}`, string(out))
}

func TestCourseRunWithoutExtraEncodesTypedFields(t *testing.T) {
	out, err := json.Marshal(CourseRun{Key: "run", UUID: "uuid"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"key": "run", "uuid": "uuid", "isMarketable": false, "isEnrollable": false}`, string(out))
}
