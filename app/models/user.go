package models

const (
	AnonymousUsername = "anonymous"
	AnonymousFullName = "Anonymous"
)

// Validate checks the directory record has an id.
func (u *User) Validate() error {
	return validate.Struct(u)
}

// AuthorView projects the user onto the fields joined into a post,
// substituting fallbacks for a missing username or full name.
func (u *User) AuthorView() AuthorView {
	view := AuthorView{
		ID:       u.ID,
		Username: AnonymousUsername,
		FullName: AnonymousFullName,
		ImageURL: u.ImageURL,
	}
	if u.Username != nil && *u.Username != "" {
		view.Username = *u.Username
	}
	if u.FullName != nil && *u.FullName != "" {
		view.FullName = *u.FullName
	}
	return view
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
