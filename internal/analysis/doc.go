// Package analysis inspects recorded signals in the frequency domain.
//
// [EstimateUltimate] finds the ultimate gain Ku and period Tu of the closed
// loop by raising a proportional gain until the error settles into a
// sustained oscillation. Those are the inputs of the Ziegler-Nichols rules.
package analysis
