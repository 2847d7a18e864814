package ports

// PasswordHasher produces and checks salted one-way password hashes.
//
// Verify returns (false, nil) on mismatch and a domain.ErrCorruptCredential
// wrapped error when the stored hash cannot be parsed.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// TokenIssuer signs identity tokens for a subject email.
type TokenIssuer interface {
	Issue(email string) (string, error)
}

// TokenVerifier resolves a token back to its subject email.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type TokenService interface {
	TokenIssuer
	TokenVerifier
}
