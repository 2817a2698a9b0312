package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Food      Category = "food"
	Health    Category = "health"
	Housing   Category = "housing"
	Sport     Category = "sport"
	Education Category = "education"
)

const (
	Single  MaritalStatus = "single"
	Married MaritalStatus = "married"
)

type (
	// Category classifies a cost entry. Only the five fixed values above are
	// accepted on input; anything else found in storage is ignored by report
	// generation.
	Category string

	MaritalStatus string

	User struct {
		ID            int64
		FirstName     string
		LastName      string
		Birthday      time.Time
		MaritalStatus MaritalStatus
	}

	Cost struct {
		ID          int64 // Database ID, assigned on insert
		UserID      int64
		Description string
		Category    Category
		Sum         float64
		Date        time.Time
	}
)

var (
	ErrNotFound             = errors.New("user not found")
	ErrDuplicateID          = errors.New("user id already exists")
	ErrMissingParameter     = errors.New("missing required parameter")
	ErrInvalidUserID        = errors.New("invalid user id")
	ErrEmptyDescription     = errors.New("empty description")
	ErrEmptyFirstName       = errors.New("empty first name")
	ErrEmptyLastName        = errors.New("empty last name")
	ErrEmptyBirthday        = errors.New("empty birthday")
	ErrInvalidCategory      = errors.New("invalid category")
	ErrInvalidMaritalStatus = errors.New("invalid marital status")
)

// Categories returns the five cost categories in report order.
func Categories() []Category {
	return []Category{Food, Health, Housing, Sport, Education}
}

func (c Category) Valid() bool {
	switch c {
	case Food, Health, Housing, Sport, Education:
		return true
	}
	return false
}

func (m MaritalStatus) Valid() bool {
	return m == Single || m == Married
}

func (u User) Validate() error {
	if u.ID <= 0 {
		return ErrInvalidUserID
	}
	if strings.TrimSpace(u.FirstName) == "" {
		return ErrEmptyFirstName
	}
	if strings.TrimSpace(u.LastName) == "" {
		return ErrEmptyLastName
	}
	if u.Birthday.IsZero() {
		return ErrEmptyBirthday
	}
	if !u.MaritalStatus.Valid() {
		return ErrInvalidMaritalStatus
	}
	return nil
}

// Validate checks the fields a caller must supply. Sum may carry any sign and
// magnitude, and a zero Date is allowed: it is defaulted to the creation time
// before the cost is stored.
func (c Cost) Validate() error {
	if c.UserID <= 0 {
		return ErrInvalidUserID
	}
	if strings.TrimSpace(c.Description) == "" {
		return ErrEmptyDescription
	}
	if !c.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

// IsValidationError reports whether err is one of the input-validation
// sentinels, as opposed to a not-found, duplicate or storage failure.
func IsValidationError(err error) bool {
	for _, sentinel := range []error{
		ErrMissingParameter,
		ErrInvalidUserID,
		ErrEmptyDescription,
		ErrEmptyFirstName,
		ErrEmptyLastName,
		ErrEmptyBirthday,
		ErrInvalidCategory,
		ErrInvalidMaritalStatus,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
