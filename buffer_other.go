//go:build !unix

package arena

import "github.com/pkg/errors"

func acquireMmap(capacity int) (buffer, error) {
	return buffer{}, errors.Wrap(ErrBackingUnsupported, BackingMmap.String())
}
