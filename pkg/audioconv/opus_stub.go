//go:build !opus

package audioconv

import (
	"fmt"
	"io"
)

func decodeOpus(io.ReadSeeker) ([]float32, error) {
	return nil, fmt.Errorf("%w: opus support not built in (build with -tags opus)", ErrUnsupported)
}
