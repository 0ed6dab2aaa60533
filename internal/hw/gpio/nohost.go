//go:build tinygo

package gpio

import "errors"

func newRealDriver() (Driver, error) {
	return nil, errors.New("no Raspberry Pi GPIO on this target")
}
