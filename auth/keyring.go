// Package auth keeps the catalog API token in the system keyring.
package auth

import (
	"errors"
	"strings"

	"github.com/coursecast/coursecast/constant"
	"github.com/zalando/go-keyring"
)

const user = "catalog-token"

// ErrNoToken is returned by Token when nothing is stored.
var ErrNoToken = errors.New("no catalog token stored, run `" + constant.Coursecast + " auth login`")

func SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token cannot be empty")
	}
	return keyring.Set(constant.Coursecast, user, token)
}

// Token returns the stored token or ErrNoToken.
func Token() (string, error) {
	token, err := keyring.Get(constant.Coursecast, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoToken
	}
	return token, err
}

// DeleteToken removes the stored token. Deleting a missing token is not an error.
func DeleteToken() error {
	err := keyring.Delete(constant.Coursecast, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
