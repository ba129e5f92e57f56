package viewmodels

import "github.com/fleetdesk/fleetdesk/pkg/types"

type User struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	FullName  string  `json:"fullName"`
	Phone     string  `json:"phone"`
	Role      string  `json:"role"`
	Active    bool    `json:"active"`
	LastLogin *string `json:"lastLogin"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// Session is returned by login; the token is also set as a cookie.
type Session struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	User      *User  `json:"user"`
}

type Upload struct {
	ID        string `json:"id"`
	Hash      string `json:"hash"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	Size      int64  `json:"size"`
	Mimetype  string `json:"mimetype"`
	IsImage   bool   `json:"isImage"`
	CreatedAt string `json:"createdAt"`
}

type Dashboard struct {
	Role       string                 `json:"role"`
	Widgets    map[string]any         `json:"widgets"`
	Navigation []types.NavigationItem `json:"navigation"`
}
