package profile

// Address is a saved delivery address. Addresses have no identity beyond
// their position in the user's address list: callers holding an index must
// re-resolve it after any deletion, since later entries shift down by one.
type Address struct {
	Type     string `json:"type"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	Landmark string `json:"landmark,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	County   string `json:"county,omitempty"`
	Pincode  string `json:"pincode"`
}

// User is the active profile, owning the address book by composition.
type User struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURI string    `json:"avatarUri,omitempty"`
	Addresses []Address `json:"addresses"`
}

// Clone deep-copies the user including the address list.
func (u User) Clone() User {
	out := u
	out.Addresses = CloneAddresses(u.Addresses)
	return out
}

// CloneAddresses deep-copies an address sequence.
func CloneAddresses(addrs []Address) []Address {
	out := make([]Address, len(addrs))
	copy(out, addrs)
	return out
}
