package scheduler

// FacultyLink maps a faculty member to a course they handle for a batch.
type FacultyLink struct {
	Faculty    string `json:"faculty" yaml:"faculty"`
	CourseCode string `json:"courseCode" yaml:"courseCode"`
	Role       string `json:"role" yaml:"role"`
	Batch      string `json:"batch" yaml:"batch"`
}

// ResolveFaculty picks the faculty teaching courseCode for batch. An exact
// batch match wins, otherwise the first link in input order. The empty
// string means no faculty is linked to the course.
func ResolveFaculty(links []FacultyLink, courseCode, batch string) string {
	first := ""
	found := false
	for _, link := range links {
		if link.CourseCode != courseCode || link.Faculty == "" {
			continue
		}
		if link.Batch == batch {
			return link.Faculty
		}
		if !found {
			first = link.Faculty
			found = true
		}
	}
	return first
}
