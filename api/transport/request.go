package transport

// CourseRequest identifies a course page request. Path parameters carry the
// enterprise and course; the optional run key comes from the query string.
type CourseRequest struct {
	EnterpriseUUID string `json:"enterprise_uuid"`
	CourseKey      string `json:"course_key"`
	CourseRunKey   string `json:"course_run_key,omitempty"`
}

// Query parameter names accepted for the course run key.
const (
	QueryCourseRunKey      = "course_run_key"
	QueryCourseRunKeyCamel = "courseRunKey"
)
