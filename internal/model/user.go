package model

// UserListItem is the projection returned by the admin user listing.  It
// mirrors the `app_user` table joined with `address`, minus the password
// column which is never serialized.
//
// Fields:
//  ID           – app_user.id (UUID text).
//  Role         – free-form role name.
//  FirstName    – app_user.first_name.
//  LastName     – app_user.last_name.
//  EmailAddress – app_user.email_address.
//  DateOfBirth  – app_user.date_of_birth (null when unknown).
//  AddressID    – app_user.address, null when the user has no address.
type UserListItem struct {
    ID           string  `db:"id" json:"id"`
    Role         string  `db:"role" json:"role"`
    FirstName    string  `db:"first_name" json:"first_name"`
    LastName     string  `db:"last_name" json:"last_name"`
    EmailAddress string  `db:"email_address" json:"email_address"`
    DateOfBirth  Date    `db:"date_of_birth" json:"date_of_birth"`
    AddressID    *string `db:"address" json:"address"`
}

// UserProfile is the single-user projection.  Password and address are
// intentionally left out.
type UserProfile struct {
    ID           string `db:"id" json:"id"`
    Role         string `db:"role" json:"role"`
    FirstName    string `db:"first_name" json:"first_name"`
    LastName     string `db:"last_name" json:"last_name"`
    EmailAddress string `db:"email_address" json:"email_address"`
    DateOfBirth  Date   `db:"date_of_birth" json:"date_of_birth"`
}

// UserAddress is the address of one user.  UID is the owning user's id.
type UserAddress struct {
    UID          string `db:"uid" json:"uid"`
    Country      string `db:"country" json:"country"`
    City         string `db:"city" json:"city"`
    Street       string `db:"street" json:"street"`
    StreetNumber string `db:"street_number" json:"street_number"`
    PostalCode   string `db:"postal_code" json:"postal_code"`
}

// UserPatch carries the columns rewritten by a user modification.  The JSON
// keys are camelCase to match what the admin client sends.
type UserPatch struct {
    Role         string `json:"role"`
    FirstName    string `json:"firstName"`
    LastName     string `json:"lastName"`
    EmailAddress string `json:"emailAddress"`
    DateOfBirth  Date   `json:"dateOfBirth"`
}
