package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"github.com/xavierca1/codease-contact/internal/usecase"
)

// formValue accepts a JSON string, number or boolean and keeps its text.
// null reads as empty.
type formValue string

func (v *formValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = formValue(s)
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		return fmt.Errorf("contact field must be a scalar, got %s", data[:1])
	default:
		*v = formValue(data)
	}
	return nil
}

type contactPayload struct {
	Name     formValue `json:"name"`
	Lastname formValue `json:"lastname"`
	Email    formValue `json:"email"`
	Phone    formValue `json:"phone"`
	Subject  formValue `json:"subject"`
	Message  formValue `json:"message"`
}

func (p contactPayload) input() usecase.SubmitContactInput {
	return usecase.SubmitContactInput{
		Name:     string(p.Name),
		Lastname: string(p.Lastname),
		Email:    string(p.Email),
		Phone:    string(p.Phone),
		Subject:  string(p.Subject),
		Message:  string(p.Message),
	}
}

// decodeContact reads a JSON or urlencoded form body.
func decodeContact(w http.ResponseWriter, r *http.Request) (usecase.SubmitContactInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); ct == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return usecase.SubmitContactInput{}, err
		}
		return usecase.SubmitContactInput{
			Name:     r.PostForm.Get("name"),
			Lastname: r.PostForm.Get("lastname"),
			Email:    r.PostForm.Get("email"),
			Phone:    r.PostForm.Get("phone"),
			Subject:  r.PostForm.Get("subject"),
			Message:  r.PostForm.Get("message"),
		}, nil
	}

	var p contactPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return usecase.SubmitContactInput{}, err
	}
	return p.input(), nil
}
