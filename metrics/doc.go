// SPDX-License-Identifier: EPL-2.0

// Package metrics exports relay counters to Prometheus and serves them
// over HTTP.
package metrics
