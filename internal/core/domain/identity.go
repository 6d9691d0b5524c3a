package domain

// User is the subset of the identity store record the storefront reads.
type User struct {
	ID          string
	Username    string
	DisplayName *string
}
