package models

// UserProfile is the Firestore mirror of a Firebase Auth user. Role and org
// claims live in the Auth custom claims; the profile doc exists for the
// admin user list and keeps a copy of both.
type UserProfile struct {
	ID    string `json:"id" firestore:"-"` // Firebase Auth UID, used as document ID
	Name  string `json:"name" firestore:"name"`
	Email string `json:"email" firestore:"email"`
	Role  string `json:"role" firestore:"role"`
	Org   OrgSet `json:"org" firestore:"org"`
}

// UserSummary is one row of the admin user list, built from Firebase Auth
// records and their custom claims.
type UserSummary struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Role     string      `json:"role"`
	Org      interface{} `json:"org"` // claim value as minted: scalar or array
	Disabled bool        `json:"disabled"`
}
