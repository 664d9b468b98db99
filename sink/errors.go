// SPDX-License-Identifier: EPL-2.0

package sink

import "errors"

var ErrInvalidConfig = errors.New("sink: invalid config")
