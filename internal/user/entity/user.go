package entity

// User is one identity record in the users collection. Username, PasswordHash
// and Salt are either all present (a login principal) or all absent.
// SearchServices/SearchShelters hold ids of Service and Shelter records.
type User struct {
	ID               string   `json:"id"`
	FirstName        string   `json:"firstName"`
	LastName         string   `json:"lastName"`
	Email            string   `json:"email"`
	PoliceID         string   `json:"policeId,omitempty"`
	ProviderDirector string   `json:"providerDirector,omitempty"`
	Admin            string   `json:"admin,omitempty"`
	Username         *string  `json:"username,omitempty"`
	PasswordHash     *string  `json:"password,omitempty"`
	Salt             *string  `json:"salt,omitempty"`
	SearchServices   []string `json:"searchServices,omitempty"`
	SearchShelters   []string `json:"searchShelters,omitempty"`
}

// HasCredentials reports whether the record can log in.
func (u *User) HasCredentials() bool {
	return u.Username != nil && *u.Username != "" &&
		u.PasswordHash != nil && *u.PasswordHash != "" &&
		u.Salt != nil && *u.Salt != ""
}

// Roles lists the role markers set on the record.
func (u *User) Roles() []string {
	var roles []string
	if u.Admin != "" {
		roles = append(roles, "admin")
	}
	if u.ProviderDirector != "" {
		roles = append(roles, "providerDirector")
	}
	if u.PoliceID != "" {
		roles = append(roles, "police")
	}
	return roles
}

// View is the outward representation of a User; it never carries the
// password hash or salt.
type View struct {
	ID               string   `json:"id"`
	FirstName        string   `json:"firstName"`
	LastName         string   `json:"lastName"`
	Email            string   `json:"email"`
	PoliceID         string   `json:"policeId,omitempty"`
	ProviderDirector string   `json:"providerDirector,omitempty"`
	Admin            string   `json:"admin,omitempty"`
	Username         string   `json:"username,omitempty"`
	SearchServices   []string `json:"searchServices"`
	SearchShelters   []string `json:"searchShelters"`
}

func (u *User) View() View {
	v := View{
		ID:               u.ID,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Email:            u.Email,
		PoliceID:         u.PoliceID,
		ProviderDirector: u.ProviderDirector,
		Admin:            u.Admin,
		SearchServices:   u.SearchServices,
		SearchShelters:   u.SearchShelters,
	}
	if u.Username != nil {
		v.Username = *u.Username
	}
	if v.SearchServices == nil {
		v.SearchServices = []string{}
	}
	if v.SearchShelters == nil {
		v.SearchShelters = []string{}
	}
	return v
}
