// Package dynamo provides the core value types shared by the planner and the
// playback loop.
//
//   - [JointState]: angle, velocity, acceleration and torque of one joint
//   - [RobotState]: one JointState per joint, in kinematic chain order
//   - [Sample]: a RobotState stamped with seconds since move start
//   - [Trajectory]: ordered samples plus the total duration
//
// # Example
//
//	arm := physics.NewArm(params)
//	p := planner.New(arm, fric, limits, planner.DefaultOptions())
//	traj := p.Plan(start, end)
//	s, ok := traj.At(elapsed)
//
// # Thread Safety
//
// Trajectories are immutable once built and may be shared freely. A
// RobotState is a plain slice; clone it before mutating a shared copy.
package dynamo
