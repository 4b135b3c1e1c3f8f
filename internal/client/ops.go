package client

import (
	"context"
	"fmt"

	"github.com/muurk/aquaclean/internal/protocol"
)

// Setpoint ranges enforced before anything reaches the wire. Values
// outside these ranges are silently ignored by the appliance, so rejecting
// them locally gives callers an error instead of a no-op.
const (
	MinWaterTemperature = 34
	MaxWaterTemperature = 40
	MinSprayLevel       = 1
	MaxSprayLevel       = 5
	MinUserProfile      = 1
	MaxUserProfile      = 4
)

// toggle sends a toggle command and, once acknowledged, records the
// affected flag as tentative until the next status read confirms it.
func (c *Client) toggle(ctx context.Context, cmd protocol.Command, t Tentative) error {
	if err := c.SendCommand(ctx, cmd); err != nil {
		return err
	}
	c.state.MarkTentative(t)
	return nil
}

// ToggleLid raises or lowers the lid.
func (c *Client) ToggleLid(ctx context.Context) error {
	return c.toggle(ctx, protocol.CmdToggleLidPosition, TentativeLid)
}

// ToggleAnalShower starts or stops the rear wash.
func (c *Client) ToggleAnalShower(ctx context.Context) error {
	return c.toggle(ctx, protocol.CmdToggleAnalShower, TentativeAnalShower)
}

// ToggleLadyShower starts or stops the front wash.
func (c *Client) ToggleLadyShower(ctx context.Context) error {
	return c.toggle(ctx, protocol.CmdToggleLadyShower, TentativeLadyShower)
}

// ToggleDryer starts or stops the warm-air dryer.
func (c *Client) ToggleDryer(ctx context.Context) error {
	return c.toggle(ctx, protocol.CmdToggleDryer, TentativeDryer)
}

// ToggleOrientationLight switches the orientation light.
func (c *Client) ToggleOrientationLight(ctx context.Context) error {
	return c.toggle(ctx, protocol.CmdToggleOrientationLight, TentativeOrientationLight)
}

// TriggerFlush flushes the toilet.
func (c *Client) TriggerFlush(ctx context.Context) error {
	return c.SendCommand(ctx, protocol.CmdTriggerFlushManually)
}

// SetWaterTemperature writes the shower water temperature in degrees
// Celsius.
func (c *Client) SetWaterTemperature(ctx context.Context, celsius int) error {
	if celsius < MinWaterTemperature || celsius > MaxWaterTemperature {
		return fmt.Errorf("water temperature %d out of range [%d, %d]",
			celsius, MinWaterTemperature, MaxWaterTemperature)
	}
	_, err := c.WriteDataPoint(ctx, protocol.DpSetShowerWaterTemperature, []byte{byte(celsius)})
	return err
}

// SetSprayIntensity writes the spray intensity level.
func (c *Client) SetSprayIntensity(ctx context.Context, level int) error {
	if level < MinSprayLevel || level > MaxSprayLevel {
		return fmt.Errorf("spray intensity %d out of range [%d, %d]",
			level, MinSprayLevel, MaxSprayLevel)
	}
	_, err := c.WriteDataPoint(ctx, protocol.DpSetAnalSprayIntensity, []byte{byte(level)})
	return err
}

// SetSprayPosition writes the spray arm position.
func (c *Client) SetSprayPosition(ctx context.Context, position int) error {
	if position < MinSprayLevel || position > MaxSprayLevel {
		return fmt.Errorf("spray position %d out of range [%d, %d]",
			position, MinSprayLevel, MaxSprayLevel)
	}
	_, err := c.WriteDataPoint(ctx, protocol.DpSetAnalSprayArmPosition, []byte{byte(position)})
	return err
}

// SetUserProfile selects the active stored user profile.
func (c *Client) SetUserProfile(ctx context.Context, profile int) error {
	if profile < MinUserProfile || profile > MaxUserProfile {
		return fmt.Errorf("user profile %d out of range [%d, %d]",
			profile, MinUserProfile, MaxUserProfile)
	}
	_, err := c.WriteDataPoint(ctx, protocol.DpActiveUserProfile, []byte{byte(profile)})
	return err
}
