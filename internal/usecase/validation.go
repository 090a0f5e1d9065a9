package usecase

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateSubmission only checks presence. Email and phone formats are not enforced here.
func ValidateSubmission(input SubmitContactInput) []ValidationError {
	var errors []ValidationError

	required := []struct {
		field string
		value string
	}{
		{"name", input.Name},
		{"lastname", input.Lastname},
		{"email", input.Email},
		{"subject", input.Subject},
		{"message", input.Message},
	}

	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errors = append(errors, ValidationError{r.field, "is required"})
		}
	}

	return errors
}
