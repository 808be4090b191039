// Package analysis inspects acceleration profiles and joint motion.
//
//   - [PowerSpectrum]: magnitude spectrum of a uniformly sampled signal
//   - [Chatter]: how much of a profile's energy sits in high frequencies,
//     and how often it flips sign
//   - [NewPhasePortrait]: angle against velocity for one joint
//
// Comparing the raw and smoothed acceleration of a plan shows what the
// smoothing stage removed:
//
//	raw := analysis.Chatter(res.Curves.RawAccel)
//	smooth := analysis.Chatter(res.Curves.SmoothAccel)
package analysis
