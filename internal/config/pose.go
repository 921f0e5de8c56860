// internal/config/pose.go
package config

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/FrankJIE09/Hans-robot/internal/motion"
)

// ErrNoTargetPose is returned when a run is requested without a target pose.
var ErrNoTargetPose = errors.New("config: target_pose is required")

// TargetPose is x, y, z, roll, pitch, yaw. Empty means not configured.
//
// YAML accepts either form:
//
//	target_pose: [100, 0, 200, 180, 0, 90]
//	target_pose: {x: 100, y: 0, z: 200, roll: 180, pitch: 0, yaw: 90}
type TargetPose []float64

func (t *TargetPose) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var v []float64
		if err := value.Decode(&v); err != nil {
			return err
		}
		*t = v
		return nil

	case yaml.MappingNode:
		var m map[string]float64
		if err := value.Decode(&m); err != nil {
			return err
		}
		out := make(TargetPose, motion.NumAxes)
		for k, v := range m {
			a, err := motion.ParseAxis(k)
			if err != nil {
				return fmt.Errorf("target_pose: %w", err)
			}
			out[a] = v
		}
		*t = out
		return nil

	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*t = nil
			return nil
		}
	}
	return fmt.Errorf("target_pose: line %d: expected a list or a mapping", value.Line)
}

// Pose converts to a motion.Pose. It returns ErrNoTargetPose when empty.
func (t TargetPose) Pose() (motion.Pose, error) {
	if len(t) == 0 {
		return motion.Pose{}, ErrNoTargetPose
	}
	return motion.PoseFromSlice(t)
}
