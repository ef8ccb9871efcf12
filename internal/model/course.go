package model

// Course is one entry of the static course catalog. Catalog entries are
// read-only reference data; they have no lifecycle in this service.
type Course struct {
	ID         string `json:"id"`
	CourseCode string `json:"course_code"`
	Name       string `json:"name"`
	Major      string `json:"major"`
}
