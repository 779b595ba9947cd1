// Package ani provides the core value types for pairwise genome similarity.
//
// This package contains type definitions and pure functions only. All other
// internal packages import ani; ani imports nothing internal.
//
// Key design constraints:
//   - PairKey is directional: (A,B) and (B,A) are distinct measurements
//   - A zero Measurement is a real value (below the aligner's reporting
//     threshold), never a stand-in for "not computed"
//   - Table holds at most one Measurement per PairKey
package ani
