package domain

import (
	"strings"
	"time"
)

// Team represents a registered event team
type Team struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Members            string    `json:"members"` // newline-delimited
	ProjectDescription string    `json:"project_description"`
	Email              string    `json:"email"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// MemberList splits the free-text member field into trimmed, non-empty names
func (t *Team) MemberList() []string {
	lines := strings.Split(t.Members, "\n")
	members := make([]string, 0, len(lines))
	for _, line := range lines {
		if name := strings.TrimSpace(line); name != "" {
			members = append(members, name)
		}
	}
	return members
}

// RegisterRequest represents a team registration form
type RegisterRequest struct {
	Name               string `json:"name"`
	Members            string `json:"members"`
	ProjectDescription string `json:"project_description"`
	Email              string `json:"email"`
	Password           string `json:"password"`
}

// Normalize trims every field and lowercases the email
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Members = strings.TrimSpace(r.Members)
	r.ProjectDescription = strings.TrimSpace(r.ProjectDescription)
	r.Email = NormalizeEmail(r.Email)
}

// TeamUpdate is a partial edit; nil fields are left unchanged
type TeamUpdate struct {
	Name               *string `json:"name,omitempty"`
	Members            *string `json:"members,omitempty"`
	ProjectDescription *string `json:"project_description,omitempty"`
}

// IsEmpty reports whether the update changes nothing
func (u TeamUpdate) IsEmpty() bool {
	return u.Name == nil && u.Members == nil && u.ProjectDescription == nil
}

// Apply merges the update into team
func (u TeamUpdate) Apply(team *Team) {
	if u.Name != nil {
		team.Name = *u.Name
	}
	if u.Members != nil {
		team.Members = *u.Members
	}
	if u.ProjectDescription != nil {
		team.ProjectDescription = *u.ProjectDescription
	}
}

// LoginRequest represents team or admin credentials
type LoginRequest struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// AuthResponse is returned after registration or login
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Team      *Team     `json:"team,omitempty"`
}

// Account holds login credentials linked to a team by email
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// NormalizeEmail trims and lowercases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
