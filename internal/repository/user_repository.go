package repository

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/dinner-reservation/internal/data"
	"github.com/iliyamo/dinner-reservation/internal/model"
	"github.com/iliyamo/dinner-reservation/internal/utils"
)

// UserRepo provides registration and credential checks over the user
// collection. Passwords are bcrypt-hashed on the way in; the hash is the
// only form that is ever persisted or compared.
type UserRepo struct {
	data       *data.Manager
	bcryptCost int
}

// NewUserRepo returns a UserRepo hashing with the given bcrypt cost.
func NewUserRepo(m *data.Manager, bcryptCost int) *UserRepo {
	return &UserRepo{data: m, bcryptCost: bcryptCost}
}

// NewUser carries the registration fields.
type NewUser struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Type     string
}

// Register creates an account. Emails are compared case-insensitively;
// a duplicate is rejected with ErrEmailExists. New accounts land in the
// collection and in the newlyRegisteredUsers side-log.
func (r *UserRepo) Register(f NewUser) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(f.Email))
	role := strings.ToLower(strings.TrimSpace(f.Type))
	if role != model.RoleHost && role != model.RoleGuest {
		role = model.RoleGuest
	}
	hash, err := utils.HashPassword(f.Password, r.bcryptCost)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{
		ID:           uuid.NewString(),
		Name:         f.Name,
		Email:        email,
		Phone:        f.Phone,
		PasswordHash: hash,
		Type:         role,
		CreatedAt:    time.Now().UTC(),
	}
	var opErr error
	persistErr := r.data.Update(func(c *data.Collections) []string {
		for _, existing := range c.Users {
			if strings.EqualFold(existing.Email, email) {
				opErr = ErrEmailExists
				return nil
			}
		}
		c.Users = append(c.Users, u)
		return []string{data.KeyUsers}
	})
	if opErr != nil {
		return model.User{}, opErr
	}
	r.data.AppendNewUser(u)
	return u, persistErr
}

// Authenticate returns the user whose email and password both match.
// The email comparison is case-insensitive; the password is verified
// against the stored bcrypt hash.
func (r *UserRepo) Authenticate(email, password string) (model.User, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	var (
		out   model.User
		found bool
	)
	r.data.View(func(c data.Collections) {
		for _, u := range c.Users {
			if strings.EqualFold(u.Email, email) {
				out = u
				found = true
				return
			}
		}
	})
	if !found || !utils.VerifyPassword(out.PasswordHash, password) {
		return model.User{}, false
	}
	return out, true
}

// FindByID returns the user with the given id.
func (r *UserRepo) FindByID(id string) (model.User, bool) {
	var (
		out   model.User
		found bool
	)
	r.data.View(func(c data.Collections) {
		for _, u := range c.Users {
			if u.ID == id {
				out = u
				found = true
				return
			}
		}
	})
	return out, found
}

// FindByEmail returns the user with the given email, compared
// case-insensitively.
func (r *UserRepo) FindByEmail(email string) (model.User, bool) {
	var (
		out   model.User
		found bool
	)
	r.data.View(func(c data.Collections) {
		for _, u := range c.Users {
			if strings.EqualFold(u.Email, email) {
				out = u
				found = true
				return
			}
		}
	})
	return out, found
}
