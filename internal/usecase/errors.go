package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrRepository  = errors.New("repository error")
	ErrBlob        = errors.New("blob error")
	ErrNotTerminal = errors.New("video is not in a terminal state")
)

func wrapRepo(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrRepository, err)
}

func wrapBlob(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrBlob, err)
}
