// Package correlation implements a single object visual tracker based on
// normalised cross correlation template matching.  Tracking quality is the
// peak-to-sidelobe ratio (PSR) of the correlation surface, values around 7
// and below indicate the target has been lost.
package correlation
