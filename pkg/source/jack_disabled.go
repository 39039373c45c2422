//go:build !jack

package source

import (
	"fmt"

	"github.com/metalblueberry/bard-tuner/pkg/tuner"
)

func newJack(Options) (tuner.Source, error) {
	return nil, fmt.Errorf("%w: jack (rebuild with -tags jack)", ErrUnsupported)
}
