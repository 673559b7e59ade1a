package auth

import (
	"errors"

	"github.com/Spok95/school-words/internal/apperr"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash сравнивается, когда логина нет: время ответа не выдаёт, существует ли пользователь.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("school-words/dummy"), bcrypt.DefaultCost)

func hashPassword(password string, cost int) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperr.ErrInvalidFields
		}
		return nil, err
	}
	return hash, nil
}

func checkPassword(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
