// Package physics provides the arm dynamics model used by the planner and
// the playback loop.
//
// [Arm] maps a joint state to torques:
//
//   - [Arm.GravityTorques]: holding torque from link masses
//   - [Arm.InverseDynamics]: gravity plus inertia and velocity coupling
//
// The model is a surrogate, not recursive Newton-Euler. Each joint sees only
// its own acceleration and velocity, which keeps torque along a straight
// joint-space path linear in path acceleration and squared path velocity.
//
//	arm := physics.NewReferenceArm()
//	tau := arm.InverseDynamics(state)
package physics
