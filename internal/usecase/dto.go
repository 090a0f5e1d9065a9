package usecase

type SubmitContactInput struct {
	Name     string `json:"name"`
	Lastname string `json:"lastname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
}

type SubmitContactOutput struct {
	ID        string `json:"id"`
	Persisted bool   `json:"-"`
}
