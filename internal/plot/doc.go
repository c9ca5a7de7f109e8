// Package plot renders an analysed curve as a PNG chart: the trimmed
// samples, the fitted stiffness line with its anchors, the user's custom
// slope line, the yield point and the peak.
package plot
