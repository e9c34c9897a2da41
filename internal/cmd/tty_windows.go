//go:build windows

package cmd

import "errors"

func checkTerminal() error {
	return errors.New("the picker needs a unix terminal")
}
