package client

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
)

// FileTokenStore keeps the single opaque token in a small JSON file, the
// durable equivalent of the browser's local storage slot.
type FileTokenStore struct {
	path string
}

type tokenFile struct {
	Token string `json:"token"`
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) Token() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}

	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return "", err
	}

	return tf.Token, nil
}

func (s *FileTokenStore) SetToken(token string) error {
	data, err := json.Marshal(tokenFile{Token: token})
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileTokenStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
