package client

import (
	"context"
	"errors"

	"github.com/muurk/aquaclean/internal/logging"
	"github.com/muurk/aquaclean/internal/protocol"
	"go.uber.org/zap"
)

// Feature groups probed at connect time. Each group is keyed by one
// representative data point; a firmware that answers a read of that point
// is assumed to carry the whole group.
var featureProbes = map[string]protocol.DataPoint{
	"anal_shower":       protocol.DpAnalShowerStatus,
	"lady_shower":       protocol.DpLadyShowerStatus,
	"dryer":             protocol.DpDryingStatus,
	"orientation_light": protocol.DpOrientationLightLed,
	"odour_extraction":  protocol.DpOdourExtractionFan,
	"descaling":         protocol.DpDescalingStatus,
	"user_profiles":     protocol.DpActiveUserProfile,
}

// ProbeDataPoint reads a data point purely to learn whether the firmware
// implements it. A timeout means "not supported" and is not an error;
// anything else (link failure, cancellation) is.
func (c *Client) ProbeDataPoint(ctx context.Context, dp protocol.DataPoint) (bool, error) {
	_, err := c.ReadDataPoint(ctx, dp)
	if errors.Is(err, ErrNoResponse) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ProbeFeatures probes each known feature group and returns a support map.
// Probing stops early if the link fails or the context is cancelled.
func (c *Client) ProbeFeatures(ctx context.Context) (map[string]bool, error) {
	features := make(map[string]bool, len(featureProbes))
	for name, dp := range featureProbes {
		supported, err := c.ProbeDataPoint(ctx, dp)
		if err != nil {
			return features, err
		}
		features[name] = supported

		logging.Debug("Feature probed",
			zap.String("feature", name),
			zap.Bool("supported", supported),
		)
	}
	return features, nil
}
