package setpoints

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/muurk/aquaclean/internal/client"
	"github.com/muurk/aquaclean/internal/logging"
	"github.com/muurk/aquaclean/internal/protocol"
	"go.uber.org/zap"
)

// Applier writes setpoint updates to an appliance and verifies them by
// reading the corresponding status data points back.
type Applier struct {
	client *client.Client
}

// NewApplier creates an applier on top of a connected client.
func NewApplier(c *client.Client) *Applier {
	return &Applier{client: c}
}

// VerificationOptions configures how setpoint verification behaves
type VerificationOptions struct {
	// MaxRetries is the maximum number of verification attempts
	// Default: 3
	MaxRetries int

	// InitialDelay is the delay before the first verification attempt.
	// This gives the appliance time to apply the written values.
	// Default: 500ms
	InitialDelay time.Duration

	// RetryDelay is the delay between retry attempts
	// Default: 1s
	RetryDelay time.Duration

	// UseExponentialBackoff doubles the retry delay each attempt
	// (up to MaxRetryDelay). Default: true
	UseExponentialBackoff bool

	// MaxRetryDelay caps the delay between retries
	// Default: 5s
	MaxRetryDelay time.Duration
}

// DefaultVerificationOptions returns sensible defaults for verification
func DefaultVerificationOptions() *VerificationOptions {
	return &VerificationOptions{
		MaxRetries:            3,
		InitialDelay:          500 * time.Millisecond,
		RetryDelay:            1 * time.Second,
		UseExponentialBackoff: true,
		MaxRetryDelay:         5 * time.Second,
	}
}

// Result contains the outcome of a setpoint verification
type Result struct {
	// Success indicates whether verification succeeded
	Success bool

	// Attempts is the number of verification attempts made
	Attempts int

	// Actual holds the values read back from the appliance, for the
	// fields that could be read
	Actual map[string]int

	// Mismatches lists fields whose read-back value differs from the
	// written one
	Mismatches []string

	// Skipped lists fields the firmware did not answer a read for.
	// These cannot be verified and do not count as mismatches.
	Skipped []string

	// Error is any error that occurred during verification
	Error error
}

// verifyPoint pairs an update field with the status data point that
// reflects it. Writes go to the set-points; reads come back from these.
type verifyPoint struct {
	name string
	dp   protocol.DataPoint
	want func(u *Update) *int
}

var verifyPoints = []verifyPoint{
	{"water temperature", protocol.DpShowerWaterTemperatureStatus, func(u *Update) *int { return u.WaterTemperature }},
	{"spray intensity", protocol.DpAnalSprayIntensityStatus, func(u *Update) *int { return u.SprayIntensity }},
	{"spray position", protocol.DpAnalSprayArmPositionStatus, func(u *Update) *int { return u.SprayPosition }},
	{"user profile", protocol.DpActiveUserProfile, func(u *Update) *int { return u.UserProfile }},
}

// Apply writes every set field of the update to the appliance. It stops at
// the first write failure; fields written before the failure stay applied.
func (a *Applier) Apply(ctx context.Context, u *Update) error {
	if errs := ValidateUpdate(u); len(errs) > 0 {
		return errs[0]
	}

	if u.WaterTemperature != nil {
		if err := a.client.SetWaterTemperature(ctx, *u.WaterTemperature); err != nil {
			return fmt.Errorf("set water temperature: %w", err)
		}
	}
	if u.SprayIntensity != nil {
		if err := a.client.SetSprayIntensity(ctx, *u.SprayIntensity); err != nil {
			return fmt.Errorf("set spray intensity: %w", err)
		}
	}
	if u.SprayPosition != nil {
		if err := a.client.SetSprayPosition(ctx, *u.SprayPosition); err != nil {
			return fmt.Errorf("set spray position: %w", err)
		}
	}
	if u.UserProfile != nil {
		if err := a.client.SetUserProfile(ctx, *u.UserProfile); err != nil {
			return fmt.Errorf("set user profile: %w", err)
		}
	}

	logging.Info("Setpoints applied", zap.String("update", u.String()))
	return nil
}

// readField reads one status data point back as an integer. The second
// return value reports whether the firmware answered at all.
func (a *Applier) readField(ctx context.Context, dp protocol.DataPoint) (int, bool, error) {
	raw, err := a.client.ReadDataPoint(ctx, dp)
	if errors.Is(err, client.ErrNoResponse) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	value, err := protocol.ParseDataPointValue(dp, raw)
	if err != nil {
		return 0, false, err
	}

	switch v := value.(type) {
	case int:
		return v, true, nil
	case int32:
		return int(v), true, nil
	case bool:
		if v {
			return 1, true, nil
		}
		return 0, true, nil
	default:
		return 0, false, fmt.Errorf("data point %d: unexpected value type %T", dp, value)
	}
}

// VerifyWithRetry reads the status data points behind an update and checks
// they match the written values, retrying with backoff to ride out the
// appliance's settling time.
func (a *Applier) VerifyWithRetry(ctx context.Context, expected *Update, opts *VerificationOptions) *Result {
	if opts == nil {
		opts = DefaultVerificationOptions()
	}

	result := &Result{
		Actual: make(map[string]int),
	}

	// Give the appliance time to settle before the first read
	time.Sleep(opts.InitialDelay)

	currentDelay := opts.RetryDelay

	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		result.Attempts++

		if attempt > 0 {
			time.Sleep(currentDelay)
			if opts.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > opts.MaxRetryDelay {
					currentDelay = opts.MaxRetryDelay
				}
			}
		}

		mismatches, skipped, err := a.verifyOnce(ctx, expected, result.Actual)
		if err != nil {
			result.Error = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}

		result.Mismatches = mismatches
		result.Skipped = skipped

		if len(mismatches) == 0 {
			result.Success = true
			result.Error = nil
			return result
		}

		if attempt < opts.MaxRetries {
			result.Error = fmt.Errorf("attempt %d: setpoint mismatch (will retry)", attempt+1)
		} else {
			result.Error = fmt.Errorf("verification failed after %d attempts: %s",
				result.Attempts, formatMismatches(mismatches))
		}
	}

	return result
}

// verifyOnce performs one read-back pass over the update's fields.
func (a *Applier) verifyOnce(ctx context.Context, expected *Update, actual map[string]int) (mismatches, skipped []string, err error) {
	for _, vp := range verifyPoints {
		want := vp.want(expected)
		if want == nil {
			continue
		}

		got, answered, err := a.readField(ctx, vp.dp)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", vp.name, err)
		}
		if !answered {
			skipped = append(skipped, vp.name)
			continue
		}

		actual[vp.name] = got
		if got != *want {
			mismatches = append(mismatches,
				fmt.Sprintf("%s: expected %d, got %d", vp.name, *want, got))
		}
	}
	return mismatches, skipped, nil
}

// formatMismatches creates a human-readable summary of mismatches
func formatMismatches(mismatches []string) string {
	if len(mismatches) == 0 {
		return "none"
	}
	if len(mismatches) == 1 {
		return mismatches[0]
	}
	result := fmt.Sprintf("%d mismatches: ", len(mismatches))
	for i, m := range mismatches {
		if i > 0 {
			result += "; "
		}
		result += m
	}
	return result
}

// ApplyAndVerify writes an update and verifies it was applied.
func (a *Applier) ApplyAndVerify(ctx context.Context, u *Update, opts *VerificationOptions) *Result {
	if err := a.Apply(ctx, u); err != nil {
		return &Result{
			Success: false,
			Error:   fmt.Errorf("apply failed: %w", err),
		}
	}
	return a.VerifyWithRetry(ctx, u, opts)
}

// ReadCurrent reads the appliance's current setpoints from their status
// data points. Fields the firmware does not answer keep their zero value;
// the returned map reports which fields were actually read.
func (a *Applier) ReadCurrent(ctx context.Context) (Setpoints, map[string]bool, error) {
	var s Setpoints
	read := make(map[string]bool, len(verifyPoints))

	assign := map[string]*int{
		"water temperature": &s.WaterTemperature,
		"spray intensity":   &s.SprayIntensity,
		"spray position":    &s.SprayPosition,
		"user profile":      &s.UserProfile,
	}

	for _, vp := range verifyPoints {
		got, answered, err := a.readField(ctx, vp.dp)
		if err != nil {
			return s, read, fmt.Errorf("read %s: %w", vp.name, err)
		}
		if !answered {
			continue
		}
		*assign[vp.name] = got
		read[vp.name] = true
	}

	return s, read, nil
}
