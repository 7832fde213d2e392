package models

// User is a local profile. ID doubles as the name of the storage slot
// backing the profile (User1..User3). ImagePath is empty when no profile
// picture was set.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ImagePath string `json:"imagePath,omitempty"`
}
