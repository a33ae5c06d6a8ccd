package service

// StoredPassword is the view of a persisted credential the verifier needs.
type StoredPassword interface {
	GetAlgo() string
	GetHash() []byte
	GetSalt() []byte
	GetParamsJSON() []byte
	GetPasswordVer() int
}

type PasswordService interface {
	Hash(password string) (hash, salt, paramsJSON []byte, algo string, ver int, err error)
	Verify(password string, cred StoredPassword) (rehashNeeded bool, ok bool)
}
