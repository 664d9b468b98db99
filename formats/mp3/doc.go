// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III streams with
// github.com/hajimehoshi/go-mp3.
//
// The decoder always produces stereo; mono files have both channels equal.
// Use audio.Conform to fold it back to one channel.
package mp3
