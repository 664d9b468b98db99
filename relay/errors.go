// SPDX-License-Identifier: EPL-2.0

package relay

import "errors"

var (
	ErrAllocationFailure = errors.New("relay: silence buffer allocation failed")
	ErrInvalidState      = errors.New("relay: stream is deinitialized")
	ErrInvalidFormat     = errors.New("relay: invalid stream format")
	ErrInvalidChannel    = errors.New("relay: channel index must not be negative")
	ErrEmptyBuffer       = errors.New("relay: queued buffer must not be empty")
	ErrPartialFrame      = errors.New("relay: queued buffer must hold whole frames")
)
