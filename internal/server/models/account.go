package models

import "time"

// Account is a stored game account owned exclusively by its uploader.
// The secret pair is kept hashed; the plaintext is never persisted.
type Account struct {
	ID                 int64
	UploaderUsername   string
	Game               string
	SecretUsernameHash []byte
	SecretPasswordHash []byte
}

// PendingAccount is an uploaded account awaiting a moderator decision,
// same queue discipline as PendingUser.
type PendingAccount struct {
	ID                 int64
	UploaderUsername   string
	Game               string
	SecretUsernameHash []byte
	SecretPasswordHash []byte
	CreatedAt          time.Time
}
