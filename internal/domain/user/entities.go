package user

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

// Account is a user record from /api/users. Some endpoints still emit snake_case names.
type Account struct {
	UserID          *int64  `json:"userId,omitempty"`
	ID              *int64  `json:"id,omitempty"`
	Username        string  `json:"username,omitempty"`
	Email           string  `json:"email,omitempty"`
	FirstName       string  `json:"firstName,omitempty"`
	FirstNameSnake  string  `json:"first_name,omitempty"`
	LastName        string  `json:"lastName,omitempty"`
	LastNameSnake   string  `json:"last_name,omitempty"`
	Role            string  `json:"role,omitempty"`
	IncomePerAnnum  float64 `json:"incomePerAnnum,omitempty"`
	IDProofFilePath *string `json:"idProofFilePath,omitempty"`
}

func (a Account) Identifier() int64 {
	switch {
	case a.UserID != nil:
		return *a.UserID
	case a.ID != nil:
		return *a.ID
	}
	return 0
}

func (a Account) First() string {
	if a.FirstName != "" {
		return a.FirstName
	}
	return a.FirstNameSnake
}

func (a Account) Last() string {
	if a.LastName != "" {
		return a.LastName
	}
	return a.LastNameSnake
}

// RegisterInput is the registration form.
type RegisterInput struct {
	FirstName      string   `json:"firstName"`
	LastName       string   `json:"lastName"`
	Username       string   `json:"username"`
	Password       string   `json:"password"`
	Email          string   `json:"email"`
	Role           Role     `json:"role"`
	IncomePerAnnum *float64 `json:"incomePerAnnum"`
}
