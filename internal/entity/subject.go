package entity

var subjectLabels = map[string]string{
	"general":     "General Inquiry",
	"courses":     "Course Information",
	"technical":   "Technical Support",
	"partnership": "Partnership Opportunities",
	"other":       "Other",
}

// SubjectLabel maps a form subject code to its display label.
// Unknown codes are returned unchanged.
func SubjectLabel(code string) string {
	if label, ok := subjectLabels[code]; ok {
		return label
	}
	return code
}
