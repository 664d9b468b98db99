// SPDX-License-Identifier: EPL-2.0

package audstream

import "errors"

// ErrStoppedEarly is returned by Play when a one-shot relay ended playback
// on an underrun before the source was exhausted.
var ErrStoppedEarly = errors.New("audstream: playback stopped before the source ended")
