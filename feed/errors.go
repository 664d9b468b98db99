// SPDX-License-Identifier: EPL-2.0

package feed

import "errors"

var (
	ErrFormatMismatch = errors.New("feed: source layout differs from relay format")
	ErrInvalidConfig  = errors.New("feed: invalid config")
)
