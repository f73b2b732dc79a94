// Package public implements the client for the Wattwatchers public device
// and energy API (api-v3).
package public

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rayve/wattwatchers-client/pkg/interval"
	"github.com/rayve/wattwatchers-client/pkg/logging"
	"github.com/rayve/wattwatchers-client/pkg/rest"
)

// Base URLs by deployment environment.
const (
	baseURLProduction = "https://api-v3.wattwatchers.com.au"
	baseURLStaging    = "https://api-v3-stage.wattwatchers.com.au"
)

// EnergyUnit selects the unit conversion the provider applies to energy
// values.
type EnergyUnit string

const (
	// UnitKW requests power values in kilowatts.
	UnitKW EnergyUnit = "kW"

	// UnitKWh requests energy values in kilowatt hours.
	UnitKWh EnergyUnit = "kWh"
)

// shortEnergyMaxWindowSeconds is the provider limit for a single
// short-energy request: half a day.
const shortEnergyMaxWindowSeconds = 12 * 3600

// Config holds the public API client configuration.
type Config struct {
	// Environment selects the API deployment (production, prod, staging).
	// Unknown values fall back to production.
	Environment string

	// BaseURL, when set, overrides the environment-derived base URL.
	BaseURL string

	// APIKey is the bearer token for the public API.
	APIKey string

	// MaxRequestsPerSecond caps the outgoing request rate.
	MaxRequestsPerSecond int
}

// Client is the public API client. All operations return a generic decoded
// JSON value and an error, exactly one of which is non-nil (an empty 2xx
// response yields nil, nil).
type Client struct {
	rest   *rest.Client
	logger zerolog.Logger
}

// New creates a public API client.
func New(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseURLFor(cfg.Environment)
	}

	restClient, err := rest.New(rest.Config{
		BaseURL:              baseURL,
		APIKey:               cfg.APIKey,
		MaxRequestsPerSecond: cfg.MaxRequestsPerSecond,
	})
	if err != nil {
		return nil, fmt.Errorf("create rest client: %w", err)
	}

	return &Client{
		rest:   restClient,
		logger: logging.NewLogger("public-api"),
	}, nil
}

// BaseURLFor maps a deployment environment name to the public API base URL.
// Unknown environments fall back to production.
func BaseURLFor(environment string) string {
	switch environment {
	case "production", "prod":
		return baseURLProduction
	case "staging":
		return baseURLStaging
	default:
		return baseURLProduction
	}
}

// Close releases the underlying transport resources.
func (c *Client) Close() error {
	return c.rest.Close()
}

// Devices retrieves all device ids associated with the API key.
func (c *Client) Devices(ctx context.Context) (any, error) {
	return c.rest.Get(ctx, "devices", nil)
}

// Device retrieves the status of the given device.
func (c *Client) Device(ctx context.Context, deviceID string) (any, error) {
	return c.rest.Get(ctx, "devices/"+deviceID, nil)
}

// PatchDevice patches the device status. Used, among other things, to update
// WiFi credentials and switch states.
func (c *Client) PatchDevice(ctx context.Context, deviceID string, payload any) (any, error) {
	return c.rest.Patch(ctx, "devices/"+deviceID, &rest.RequestOptions{Body: payload})
}

// UpdateWiFiCredentials updates the WiFi credentials of the device. If
// successful this causes the device to switch to WiFi comms. At least one of
// ssid and psk must be given.
func (c *Client) UpdateWiFiCredentials(ctx context.Context, deviceID string, ssid, psk *string) (any, error) {
	if ssid == nil && psk == nil {
		return nil, rest.NewCallerError(
			"updating WiFi credentials requires at least one of SSID and PSK")
	}

	wifi := map[string]any{}
	if ssid != nil {
		wifi["ssid"] = *ssid
	}
	if psk != nil {
		wifi["psk"] = *psk
	}

	payload := map[string]any{
		"comms": map[string]any{
			"wifi": wifi,
		},
	}
	return c.PatchDevice(ctx, deviceID, payload)
}

// ResetWiFiCredentials clears the WiFi credentials of the device, causing it
// to switch to cellular comms.
func (c *Client) ResetWiFiCredentials(ctx context.Context, deviceID string) (any, error) {
	empty := ""
	return c.UpdateWiFiCredentials(ctx, deviceID, &empty, &empty)
}

// ChangeSwitchState changes the state of one switch on the device.
func (c *Client) ChangeSwitchState(ctx context.Context, deviceID, switchID, targetState string) (any, error) {
	payload := map[string]any{
		"id": deviceID,
		"switches": []map[string]any{
			{"id": switchID, "state": targetState},
		},
	}
	return c.PatchDevice(ctx, deviceID, payload)
}

// UpdateReportingInterval sets the short-energy reporting interval of the
// device, in seconds.
func (c *Client) UpdateReportingInterval(ctx context.Context, deviceID string, reportingInterval int) (any, error) {
	payload := map[string]any{
		"shortEnergyReportingInterval": reportingInterval,
	}
	return c.rest.Post(ctx, "devices/"+deviceID+"/reporting-interval",
		&rest.RequestOptions{Body: payload})
}

// LatestShortEnergy retrieves the most recent short-energy sample for the
// device. A recognized unit (kW, kWh) is passed as a conversion option; any
// other value leaves the provider default untouched.
func (c *Client) LatestShortEnergy(ctx context.Context, deviceID string, unit EnergyUnit) (any, error) {
	opts := &rest.RequestOptions{}
	if unit == UnitKW || unit == UnitKWh {
		opts.Query = queryValues("convert[energy]", string(unit))
	}
	return c.rest.Get(ctx, "short-energy/"+deviceID+"/latest", opts)
}

// FirstLongEnergy retrieves the earliest long-energy record available for
// the device.
func (c *Client) FirstLongEnergy(ctx context.Context, deviceID string) (any, error) {
	return c.rest.Get(ctx, "long-energy/"+deviceID+"/first", nil)
}

// LoadLongEnergy retrieves long-energy data for [fromTs, toTs] at the given
// granularity, batching the range into the provider-mandated maximum window
// for that granularity and issuing one request per window.
func (c *Client) LoadLongEnergy(ctx context.Context, deviceID string, fromTs, toTs int64, granularity interval.Granularity, unit EnergyUnit) ([]any, error) {
	windows, err := interval.Split(fromTs, toTs, granularity.MaxWindowSeconds())
	if err != nil {
		return nil, err
	}
	return c.loadEnergy(ctx, "long-energy/"+deviceID, deviceID, windows, unit, granularity)
}

// LoadShortEnergy retrieves short-energy data for [fromTs, toTs], batching
// the range into fixed half-day windows. Short-energy queries carry no
// granularity parameter.
func (c *Client) LoadShortEnergy(ctx context.Context, deviceID string, fromTs, toTs int64, unit EnergyUnit) ([]any, error) {
	windows, err := interval.Split(fromTs, toTs, shortEnergyMaxWindowSeconds)
	if err != nil {
		return nil, err
	}
	return c.loadEnergy(ctx, "short-energy/"+deviceID, deviceID, windows, unit, "")
}
